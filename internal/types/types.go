package types

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Strategy is one way of reading a field from a rendered product page
type Strategy struct {
	// Selector is a CSS selector evaluated against the rendered document
	Selector string `mapstructure:"selector" json:"selector"`
	// Attr names the attribute to read; empty reads the element text
	Attr string `mapstructure:"attr" json:"attr,omitempty"`
	// JSONKey reads a key from the JSON-LD Product object inside the selected element
	JSONKey string `mapstructure:"json_key" json:"json_key,omitempty"`
}

// StrategyList is an ordered list of strategies; the first non-empty result wins
type StrategyList []Strategy

// FieldStrategies holds the ordered strategies for every canonical field
type FieldStrategies struct {
	Name         StrategyList `mapstructure:"name" json:"name"`
	Price        StrategyList `mapstructure:"price" json:"price"`
	SKU          StrategyList `mapstructure:"sku" json:"sku"`
	Dimensions   StrategyList `mapstructure:"dimensions" json:"dimensions"`
	Description  StrategyList `mapstructure:"description" json:"description"`
	Finish       StrategyList `mapstructure:"finish" json:"finish"`
	Images       StrategyList `mapstructure:"images" json:"images"`
	Availability StrategyList `mapstructure:"availability" json:"availability"`
}

// LoginForm describes the vendor login page used by the render session
type LoginForm struct {
	URL              string `mapstructure:"url" json:"url"`
	UsernameSelector string `mapstructure:"username_selector" json:"username_selector"`
	PasswordSelector string `mapstructure:"password_selector" json:"password_selector"`
	SubmitSelector   string `mapstructure:"submit_selector" json:"submit_selector"`
	// UsernameField and PasswordField are the form field names used by the static session
	UsernameField string `mapstructure:"username_field" json:"username_field"`
	PasswordField string `mapstructure:"password_field" json:"password_field"`
}

// VendorProfile describes how to crawl and extract one vendor site
type VendorProfile struct {
	ID                  string            `mapstructure:"id" json:"id"`
	Name                string            `mapstructure:"name" json:"name"`
	BaseURL             string            `mapstructure:"base_url" json:"base_url"`
	Domains             []string          `mapstructure:"domains" json:"domains"`
	ListingPaths        []string          `mapstructure:"listing_paths" json:"listing_paths"`
	ProductPathPatterns []string          `mapstructure:"product_path_patterns" json:"product_path_patterns,omitempty"`
	ListingCategories   map[string]string `mapstructure:"listing_categories" json:"listing_categories,omitempty"`
	Fields              FieldStrategies   `mapstructure:"fields" json:"fields"`
	// SpecTable selects the product specification table read when field strategies miss
	SpecTable string     `mapstructure:"spec_table" json:"spec_table,omitempty"`
	Login     *LoginForm `mapstructure:"login" json:"login,omitempty"`
}

// RawExtraction holds the field values read from one product page before normalization
type RawExtraction struct {
	VendorID         string
	Vendor           string
	SourceURL        string
	Name             string
	PriceText        string
	SKU              string
	Dimensions       string
	Description      string
	Finish           string
	AvailabilityText string
	ImageURLs        []string
	// Misses lists the fields whose strategies were all exhausted
	Misses []string
}

// ImageAsset is an encoded product image
type ImageAsset struct {
	SourceURL   string `json:"source_url"`
	ContentType string `json:"content_type"`
	ByteSize    int    `json:"byte_size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Data        []byte `json:"data"`
}

// Classification is the output of the keyword classifier
type Classification struct {
	Category string `json:"category"`
	RoomType string `json:"room_type"`
	Material string `json:"material"`
	Style    string `json:"style"`
}

// ProductRecord is the canonical catalog record
type ProductRecord struct {
	ID          string              `json:"id"`
	IdentityKey string              `json:"identity_key"`
	VendorID    string              `json:"vendor_id"`
	Vendor      string              `json:"vendor"`
	Name        string              `json:"name"`
	Price       decimal.NullDecimal `json:"price"`
	SKU         *string             `json:"sku"`
	Category    string              `json:"category"`
	RoomType    string              `json:"room_type"`
	Style       string              `json:"style"`
	Color       string              `json:"color"`
	Material    string              `json:"material"`
	Dimensions  string              `json:"dimensions"`
	Description string              `json:"description"`
	Images      []ImageAsset        `json:"images"`
	SourceURL   string              `json:"source_url"`
	Available   bool                `json:"available"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Credential is a decrypted vendor login
type Credential struct {
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"-"`
}

// CredentialSource supplies decrypted credentials per vendor id
type CredentialSource interface {
	// Lookup returns false when the vendor has no stored credentials
	Lookup(ctx context.Context, vendorID string) (Credential, bool, error)
}

// Session is a page-rendering context owned by one vendor run.
// Navigation on a session is sequential.
type Session interface {
	// Login submits the vendor login form and waits until the browser leaves the login URL
	Login(ctx context.Context, form LoginForm, cred Credential) error

	// Load returns the fully-rendered HTML of url
	Load(ctx context.Context, url string) (string, error)

	// Close releases the session
	Close()
}

// SessionFactory opens a new session for a vendor run
type SessionFactory func(ctx context.Context, profile VendorProfile) (Session, error)

// Logger is the logging interface used across the pipeline
type Logger = logrus.FieldLogger
