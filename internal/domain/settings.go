package domain

// SiteSettings is the seller profile shown on public pages and used as the
// destination of outbound lead links.
type SiteSettings struct {
	SellerName      string `db:"seller_name" json:"sellerName" yaml:"seller_name"`
	SellerPhone     string `db:"seller_phone" json:"sellerPhone" yaml:"seller_phone"`
	SellerEmail     string `db:"seller_email" json:"sellerEmail" yaml:"seller_email"`
	SellerBio       string `db:"seller_bio" json:"sellerBio" yaml:"seller_bio"`
	WhatsAppNumber  string `db:"whatsapp_number" json:"whatsappNumber" yaml:"whatsapp_number"`
	MetaDescription string `db:"meta_description" json:"metaDescription" yaml:"meta_description"`
	Keywords        string `db:"keywords" json:"keywords" yaml:"keywords"`
}

const MaxMetaDescription = 160
