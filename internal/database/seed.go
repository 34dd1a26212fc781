package database

import (
	"errors"

	"loteamento/config"
	"loteamento/internal/domain"
	"loteamento/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultLotImages = []string{"./img/lote-1.webp", "./img/lote-2.webp", "./img/lote-3.jpg"}

// DefaultLots returns the lots present on a fresh install.
func DefaultLots() []models.Lot {
	return []models.Lot{
		{
			Title:       "Long Town",
			Code:        "TKBFF-022",
			Price:       "130.000,00",
			Size:        "200m²",
			Images:      append([]string(nil), defaultLotImages...),
			Description: "Lote residencial em área nobre com infraestrutura completa.",
			Phone:       "5534996778018",
			Status:      domain.LotAvailable,
		},
		{
			Title:       "Garden Ville",
			Code:        "TKBFF-023",
			Price:       "150.000,00",
			Size:        "250m²",
			Images:      append([]string(nil), defaultLotImages...),
			Description: "Lote premium com vista privilegiada e fácil acesso.",
			Phone:       "5534996778018",
			Status:      domain.LotAvailable,
		},
	}
}

func DefaultSlides() []models.CarouselSlide {
	return []models.CarouselSlide{
		{
			Image:       "img/carroussel-1.jpg",
			Title:       "🏡 Loteamento Premium",
			Description: "Conheça nossos lotes de alto padrão com toda infraestrutura necessária para realizar seus sonhos",
			Order:       1,
			Active:      true,
		},
		{
			Image:       "img/carroussel-2.jpg",
			Title:       "📍 Localização Privilegiada",
			Description: "Área estratégica com fácil acesso, próximo a centros urbanos e com infraestrutura completa",
			Order:       2,
			Active:      true,
		},
		{
			Image:       "img/carroussel-3.jpg",
			Title:       "💰 Investimento Seguro",
			Description: "Garanta seu lote com as melhores condições de pagamento e valorização garantida",
			Order:       3,
			Active:      true,
		},
	}
}

func DefaultConfigs() []models.ConfigEntry {
	return []models.ConfigEntry{
		{Key: "telefone", Value: "(34) 99999-9999", Type: domain.ConfigString, Description: "Telefone de contato"},
		{Key: "email", Value: "contato@ibizaloteamentos.com", Type: domain.ConfigString, Description: "Email de contato"},
		{Key: "endereco", Value: "Av. dos Loteamentos, 123 - Cidade, Estado", Type: domain.ConfigString, Description: "Endereço da empresa"},
		{Key: "titulo_site", Value: "Loteamento Ibiza", Type: domain.ConfigString, Description: "Título do site"},
		{Key: "subtitulo", Value: "O lugar perfeito para construir seus sonhos espera por você!", Type: domain.ConfigString, Description: "Subtítulo do site"},
	}
}

// SeedDefaults fills each content table with its default rows when that
// table is empty. Pass a transaction handle to make it part of a larger unit.
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Lot{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		lots := DefaultLots()
		if err := db.Create(&lots).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&models.CarouselSlide{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		slides := DefaultSlides()
		if err := db.Create(&slides).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&models.ConfigEntry{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		configs := DefaultConfigs()
		if err := db.Create(&configs).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the first admin from config when no user exists yet.
// It is a no-op when credentials are not configured.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) (bool, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return false, nil
	}
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	u := models.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
