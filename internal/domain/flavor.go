package domain

import "slices"

// Flavors is the fixed flavor vocabulary, in display order.
var Flavors = []string{
	"Amadeirado",
	"Terroso",
	"Picante",
	"Doce",
	"Cremoso",
	"Frutado",
	"Floral",
	"Herbáceo",
	"Tostado",
	"Chocolate",
	"Café",
	"Baunilha",
	"Cedro",
	"Couro",
	"Mel",
	"Nozes",
}

// IsFlavor reports whether s is in the vocabulary. Matching is exact.
func IsFlavor(s string) bool {
	return slices.Contains(Flavors, s)
}
