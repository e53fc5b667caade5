package models

// All returns one value of every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ContactMessage{},
	}
}
