package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"brokerage/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func DefaultSiteSettings() domain.SiteSettings {
	return domain.SiteSettings{
		SellerName:      "Silvio Vitória Sobrinho",
		SellerPhone:     "5545990208888",
		SellerEmail:     "contato@brokerage.test",
		SellerBio:       "Over 30 years in the real-estate market of western Paraná, with personal and transparent service.",
		WhatsAppNumber:  "5545990208888",
		MetaDescription: "Houses, apartments and land for sale and rent in western Paraná.",
		Keywords:        "real estate cascavel, houses for sale paraná, apartments for rent",
	}
}

func (r *SettingsRepo) Get(ctx context.Context) (domain.SiteSettings, error) {
	var s domain.SiteSettings
	err := r.db.GetContext(ctx, &s, `
	  SELECT seller_name, seller_phone, seller_email, seller_bio,
	         whatsapp_number, meta_description, keywords
	  FROM settings WHERE id = 1`)
	return s, err
}

func (r *SettingsRepo) Save(ctx context.Context, s domain.SiteSettings) error {
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO settings(id,seller_name,seller_phone,seller_email,seller_bio,whatsapp_number,meta_description,keywords,updated_at)
	  VALUES(1,:seller_name,:seller_phone,:seller_email,:seller_bio,:whatsapp_number,:meta_description,:keywords,CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET
	    seller_name=excluded.seller_name, seller_phone=excluded.seller_phone,
	    seller_email=excluded.seller_email, seller_bio=excluded.seller_bio,
	    whatsapp_number=excluded.whatsapp_number, meta_description=excluded.meta_description,
	    keywords=excluded.keywords, updated_at=CURRENT_TIMESTAMP
	`, s)
	return err
}
