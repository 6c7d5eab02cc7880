package catalog

import "github.com/shopspring/decimal"

func sampleProducts() []Input {
	return []Input{
		{
			Name:              "Огурцы свежие",
			Category:          CategoryVegetables,
			Price:             decimal.NewFromInt(50),
			MinOrderIncrement: decimal.NewFromInt(10),
			Unit:              DefaultUnit,
			Description:       "Свежие огурцы из Узбекистана",
			ShelfLife:         "7 дней",
			Allergens:         "Нет",
			ImageURL:          "https://images.unsplash.com/photo-1560433802-62c9db426a4d",
		},
		{
			Name:              "Яблоки Гала",
			Category:          CategoryFruits,
			Price:             decimal.NewFromInt(120),
			MinOrderIncrement: decimal.NewFromInt(20),
			Unit:              DefaultUnit,
			Description:       "Сладкие красные яблоки",
			ShelfLife:         "30 дней",
			Allergens:         "Нет",
			ImageURL:          "https://images.unsplash.com/photo-1571535911609-4f7afc6af16b",
		},
		{
			Name:              "Бананы",
			Category:          CategoryFruits,
			Price:             decimal.NewFromInt(90),
			MinOrderIncrement: decimal.NewFromInt(10),
			Unit:              DefaultUnit,
			Description:       "Спелые сладкие бананы из Эквадора",
			ShelfLife:         "5 дней",
			Allergens:         "Нет",
			ImageURL:          "https://images.unsplash.com/photo-1603833665858-e61d17a86224",
		},
	}
}
