package catalog

import (
	"time"

	"brokerage/internal/domain"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t.UTC()
}

// SeedProperties is the demo catalog loaded into an empty database.
func SeedProperties() []domain.Property {
	return []domain.Property{
		{
			ID:           "1",
			Title:        "Casa Moderna em Cascavel",
			Description:  "Gated-community house with generous space and first-class finishing, close to schools, shopping and the main avenues.",
			Type:         domain.TypeSale,
			Status:       domain.StatusAvailable,
			Price:        450000,
			City:         "Cascavel",
			Neighborhood: "Cascavel Velho",
			Features:     domain.Features{Area: 180, Bedrooms: intp(3), Bathrooms: intp(2), Garage: intp(2), BuiltArea: floatp(150)},
			Amenities:    []string{"Pool", "Barbecue", "Backyard", "Laundry", "Porch"},
			Images: []string{
				"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1600607687644-aac4c3eac7f4?w=800&h=600&fit=crop",
			},
			Coordinates:      &domain.Coordinates{Lat: -24.9555, Lng: -53.4552},
			AcceptsExchange:  true,
			AcceptsFinancing: true,
			Highlighted:      true,
			CreatedAt:        day("2024-01-15"),
		},
		{
			ID:           "2",
			Title:        "Apartamento Centro de Foz do Iguaçu",
			Description:  "Spacious downtown apartment near every service and shop, with a view over the city.",
			Type:         domain.TypeRental,
			Status:       domain.StatusAvailable,
			Price:        2500,
			City:         "Foz do Iguaçu",
			Neighborhood: "Centro",
			Features:     domain.Features{Area: 85, Bedrooms: intp(2), Bathrooms: intp(1), Garage: intp(1), BuiltArea: floatp(85)},
			Amenities:    []string{"Elevator", "Balcony", "24h concierge", "Laundry"},
			Images: []string{
				"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1502672260066-6bc2557208d0?w=800&h=600&fit=crop",
			},
			Coordinates: &domain.Coordinates{Lat: -25.5478, Lng: -54.5882},
			Highlighted: true,
			CreatedAt:   day("2024-01-20"),
		},
		{
			ID:           "3",
			Title:        "Terreno 500m² em Toledo",
			Description:  "Flat lot in a growing neighborhood, near supermarkets and pharmacies. Ready to build.",
			Type:         domain.TypeLand,
			Status:       domain.StatusAvailable,
			Price:        280000,
			City:         "Toledo",
			Neighborhood: "Jardim Europa",
			Features:     domain.Features{Area: 500},
			Amenities:    []string{"Corner lot", "Flat", "Water", "Power", "Sewage"},
			Images: []string{
				"https://images.unsplash.com/photo-1500382017468-9049fed747ef?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1495954484750-af469f2f9be5?w=800&h=600&fit=crop",
			},
			Coordinates:      &domain.Coordinates{Lat: -24.7136, Lng: -53.7433},
			AcceptsExchange:  true,
			AcceptsFinancing: true,
			CreatedAt:        day("2024-01-10"),
		},
		{
			ID:           "4",
			Title:        "Casa 4 Quartos em Maringá",
			Description:  "Four bedrooms, two of them suites, roomy backyard and covered parking for three cars.",
			Type:         domain.TypeSale,
			Status:       domain.StatusAvailable,
			Price:        680000,
			City:         "Maringá",
			Neighborhood: "Zona 7",
			Features:     domain.Features{Area: 320, Bedrooms: intp(4), Bathrooms: intp(3), Garage: intp(3), BuiltArea: floatp(250)},
			Amenities:    []string{"Pool", "Barbecue", "Large backyard", "Gourmet area", "Guest house"},
			Images: []string{
				"https://images.unsplash.com/photo-1613977257363-707ba9348227?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1613977257592-4871e5fcd7c4?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=800&h=600&fit=crop",
			},
			Coordinates:      &domain.Coordinates{Lat: -23.4205, Lng: -51.9333},
			AcceptsExchange:  true,
			AcceptsFinancing: true,
			Highlighted:      true,
			CreatedAt:        day("2024-01-25"),
		},
		{
			ID:           "5",
			Title:        "Apartamento 3 Quartos - Cascavel",
			Description:  "Three-bedroom apartment with a suite in a modern building with full leisure area, near universities and hospitals.",
			Type:         domain.TypeRental,
			Status:       domain.StatusAvailable,
			Price:        1800,
			City:         "Cascavel",
			Neighborhood: "Universitário",
			Features:     domain.Features{Area: 95, Bedrooms: intp(3), Bathrooms: intp(2), Garage: intp(2), BuiltArea: floatp(95)},
			Amenities:    []string{"Pool", "Gym", "Party room", "Playground", "Barbecue"},
			Images: []string{
				"https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1560448204-61dc36dc98c8?w=800&h=600&fit=crop",
			},
			Coordinates: &domain.Coordinates{Lat: -24.9778, Lng: -53.4583},
			Highlighted: true,
			CreatedAt:   day("2024-02-01"),
		},
		{
			ID:           "6",
			Title:        "Casa em Condomínio - Foz do Iguaçu",
			Description:  "Single-storey house in a high-end gated community with 24h security, green area and club.",
			Type:         domain.TypeSale,
			Status:       domain.StatusAvailable,
			Price:        520000,
			City:         "Foz do Iguaçu",
			Neighborhood: "Três Lagoas",
			Features:     domain.Features{Area: 250, Bedrooms: intp(3), Bathrooms: intp(2), Garage: intp(2), BuiltArea: floatp(160)},
			Amenities:    []string{"Club", "Security", "Green area", "Barbecue", "Porch"},
			Images: []string{
				"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=800&h=600&fit=crop",
				"https://images.unsplash.com/photo-1600566753190-17f0baa2a6c3?w=800&h=600&fit=crop",
			},
			Coordinates:      &domain.Coordinates{Lat: -25.5163, Lng: -54.5854},
			AcceptsExchange:  true,
			AcceptsFinancing: true,
			Highlighted:      true,
			CreatedAt:        day("2024-01-28"),
		},
	}
}
