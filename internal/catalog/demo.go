package catalog

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
)

// demoEpoch orders the demonstration catalogue deterministically.
var demoEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Demo returns fresh copies of the demonstration categories and products.
func Demo() ([]models.Product, []models.Category) {
	categories := []models.Category{
		{ID: "cat1", Name: "Électronique", Icon: "📱"},
		{ID: "cat2", Name: "Mode & Vêtements", Icon: "👕"},
		{ID: "cat3", Name: "Maison & Déco", Icon: "🏠"},
		{ID: "cat4", Name: "Beauté & Santé", Icon: "💄"},
		{ID: "cat5", Name: "Sport & Fitness", Icon: "⚽"},
	}
	for i := range categories {
		categories[i].CreatedAt = demoEpoch.Add(time.Duration(i) * time.Minute)
		categories[i].UpdatedAt = categories[i].CreatedAt
	}

	products := []models.Product{
		demoProduct("1", "Smartphone Premium", "Smartphone haute performance avec écran AMOLED 6.7 pouces", 254000, "cat1", 15, "1511707171634-5f897ff02aa9"),
		demoProduct("2", "Écouteurs Sans Fil", "Écouteurs Bluetooth avec réduction de bruit active", 89000, "cat1", 25, "1505740420928-5e560c06d30e"),
		demoProduct("3", "Tablette Pro", "Tablette 10 pouces avec processeur puissant", 189000, "cat1", 8, "1544244015-0df4b3ffc6b0"),
		demoProduct("4", "Montre Connectée", "Montre intelligente avec suivi de santé", 65000, "cat1", 30, "1523275335684-37898b6baf30"),
		demoProduct("5", "Enceinte Portable", "Enceinte Bluetooth avec son stéréo puissant", 45000, "cat1", 12, "1608043152269-423dbba4e7e1"),
		demoProduct("6", "T-Shirt Premium", "T-shirt en coton bio, coupe moderne", 15000, "cat2", 50, "1521572163474-6864f9cf17ab"),
		demoProduct("7", "Jean Slim Fit", "Jean délavé, coupe ajustée", 25000, "cat2", 20, "1542272604-787c3835535d"),
		demoProduct("8", "Veste en Cuir", "Veste en cuir véritable, style classique", 125000, "cat2", 5, "1551028719-00167b16eac5"),
		demoProduct("9", "Sneakers Sport", "Chaussures de sport confortables", 35000, "cat2", 18, "1542291026-7eec264c27ff"),
		demoProduct("10", "Robe Élégante", "Robe cocktail, coupe ajustée", 45000, "cat2", 22, "1595777457583-95e059d581b8"),
		demoProduct("11", "Lampadaire Moderne", "Lampadaire design avec éclairage LED", 55000, "cat3", 10, "1507473885765-e6ed057f782c"),
		demoProduct("12", "Coussin Décoratif", "Coussin en velours, plusieurs coloris", 12000, "cat3", 35, "1584100936595-4556d5b8e5e0"),
		demoProduct("13", "Tapis Moderne", "Tapis en laine, design contemporain", 75000, "cat3", 7, "1556912172-45b7abe8b7e4"),
		demoProduct("14", "Vase Décoratif", "Vase en céramique, design unique", 28000, "cat3", 28, "1578662996442-48f60103fc96"),
		demoProduct("15", "Miroir Design", "Miroir mural avec cadre doré", 45000, "cat3", 14, "1618221195710-dd6b41faaea8"),
		demoProduct("16", "Kit Soin Visage", "Kit complet de soin pour le visage", 32000, "cat4", 40, "1556229010-6c3f2c9ca5f8"),
		demoProduct("17", "Parfum Premium", "Parfum de luxe, senteur boisée", 85000, "cat4", 6, "1541643600914-78b084683601"),
		demoProduct("18", "Rouge à Lèvres", "Rouge à lèvres longue tenue", 15000, "cat4", 45, "1583241805004-265fc0e91459"),
		demoProduct("19", "Crème Hydratante", "Crème hydratante jour et nuit", 22000, "cat4", 32, "1556228578-0d85b1a4d571"),
		demoProduct("20", "Haltères Ajustables", "Haltères réglables de 2 à 20 kg", 45000, "cat5", 16, "1571019613454-1cb2f99b2d8b"),
		demoProduct("21", "Tapis de Yoga", "Tapis de yoga antidérapant", 18000, "cat5", 0, "1601925260368-ae2f83cf8b7f"),
		demoProduct("22", "Vélo d'Appartement", "Vélo d'appartement pliable", 125000, "cat5", 3, "1571019613454-1cb2f99b2d8b"),
	}
	for i := range products {
		products[i].CreatedAt = demoEpoch.Add(time.Hour + time.Duration(i)*time.Minute)
		products[i].UpdatedAt = products[i].CreatedAt
	}
	return products, categories
}

func demoProduct(id, name, description string, price int64, categoryID string, stock int, photo string) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		ImageURL:    "https://images.unsplash.com/photo-" + photo + "?w=400&h=400&fit=crop",
		CategoryID:  categoryID,
	}
}
