package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Records below mirror the relational schema. Association fields are only used to
// declare foreign keys and for preloading labels; writes always omit associations.

// AddressRecord is a row of addresses.
type AddressRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	Country    string `gorm:"size:45;not null"`
	City       string `gorm:"size:45;not null"`
	PostalCode string `gorm:"size:45;not null"`
	Street     string `gorm:"size:45;not null"`
	Details    string `gorm:"size:45"`
}

func (AddressRecord) TableName() string { return "addresses" }

// UserRecord is a row of users.
type UserRecord struct {
	ID               uint64         `gorm:"primaryKey"`
	Username         string         `gorm:"size:150;not null;uniqueIndex:uq_users_username"`
	Email            string         `gorm:"size:254;not null;uniqueIndex:uq_users_email"`
	PasswordHash     string         `gorm:"size:255;not null"`
	FirstName        string         `gorm:"size:150"`
	LastName         string         `gorm:"size:150"`
	Phone            string         `gorm:"size:45"`
	Role             string         `gorm:"size:20;not null;index"`
	IsSuperuser      bool           `gorm:"not null;default:false"`
	DefaultAddressID *uint64        `gorm:"index"`
	DefaultAddress   *AddressRecord `gorm:"foreignKey:DefaultAddressID;constraint:OnDelete:SET NULL"`
	CreatedAt        time.Time
}

func (UserRecord) TableName() string { return "users" }

// UserAddressRecord links a user to one of their addresses.
type UserAddressRecord struct {
	ID        uint64         `gorm:"primaryKey"`
	UserID    uint64         `gorm:"not null;uniqueIndex:uq_user_address"`
	User      *UserRecord    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AddressID uint64         `gorm:"not null;uniqueIndex:uq_user_address"`
	Address   *AddressRecord `gorm:"foreignKey:AddressID;constraint:OnDelete:RESTRICT"`
}

func (UserAddressRecord) TableName() string { return "user_addresses" }

// CompanyRecord is a row of companies.
type CompanyRecord struct {
	ID        uint64         `gorm:"primaryKey"`
	Name      string         `gorm:"size:100;not null"`
	Bulstat   string         `gorm:"size:20;not null;uniqueIndex:uq_companies_bulstat"`
	Phone     string         `gorm:"size:32"`
	AddressID uint64         `gorm:"not null"`
	Address   *AddressRecord `gorm:"foreignKey:AddressID;constraint:OnDelete:RESTRICT"`
}

func (CompanyRecord) TableName() string { return "companies" }

// OfficeRecord is a row of offices.
type OfficeRecord struct {
	ID           uint64         `gorm:"primaryKey"`
	CompanyID    uint64         `gorm:"not null;index"`
	Company      *CompanyRecord `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Name         string         `gorm:"size:100;not null"`
	Code         string         `gorm:"size:20;not null;uniqueIndex:uq_offices_code"`
	Phone        string         `gorm:"size:32"`
	AddressID    uint64         `gorm:"not null"`
	Address      *AddressRecord `gorm:"foreignKey:AddressID;constraint:OnDelete:RESTRICT"`
	WorkingHours string         `gorm:"size:60"`
}

func (OfficeRecord) TableName() string { return "offices" }

// EmployeeRecord is a row of employees; it shares its primary key with users.
type EmployeeRecord struct {
	UserID   uint64          `gorm:"primaryKey;autoIncrement:false"`
	User     *UserRecord     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Code     string          `gorm:"size:20;not null;uniqueIndex:uq_employees_code"`
	Type     string          `gorm:"size:20;not null"`
	OfficeID uint64          `gorm:"not null;index"`
	Office   *OfficeRecord   `gorm:"foreignKey:OfficeID;constraint:OnDelete:RESTRICT"`
	HireDate time.Time       `gorm:"type:date;not null"`
	Salary   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (EmployeeRecord) TableName() string { return "employees" }

// TariffRecord is a row of tariffs, unique per (company, delivery type).
type TariffRecord struct {
	ID           uint64          `gorm:"primaryKey"`
	CompanyID    uint64          `gorm:"not null;uniqueIndex:uq_tariffs_company_type"`
	Company      *CompanyRecord  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	DeliveryType string          `gorm:"size:20;not null;uniqueIndex:uq_tariffs_company_type"`
	PricePerKg   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (TariffRecord) TableName() string { return "tariffs" }

// ParcelStatusRecord is a row of the status vocabulary.
type ParcelStatusRecord struct {
	Code        string `gorm:"primaryKey;size:30"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"size:255"`
	IsTerminal  bool   `gorm:"not null;default:false"`
}

func (ParcelStatusRecord) TableName() string { return "parcel_statuses" }

// ParcelRecord is a row of parcels.
type ParcelRecord struct {
	ID                uint64              `gorm:"primaryKey"`
	TrackingNumber    string              `gorm:"size:50;not null;uniqueIndex:uq_parcels_tracking_number"`
	CompanyID         *uint64             `gorm:"index"`
	Company           *CompanyRecord      `gorm:"foreignKey:CompanyID;constraint:OnDelete:RESTRICT"`
	SenderID          uint64              `gorm:"not null;index"`
	Sender            *UserRecord         `gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT"`
	ReceiverID        uint64              `gorm:"not null;index"`
	Receiver          *UserRecord         `gorm:"foreignKey:ReceiverID;constraint:OnDelete:RESTRICT"`
	SenderOfficeID    *uint64             `gorm:"index"`
	SenderOffice      *OfficeRecord       `gorm:"foreignKey:SenderOfficeID;constraint:OnDelete:SET NULL"`
	ReceiverOfficeID  *uint64             `gorm:"index"`
	ReceiverOffice    *OfficeRecord       `gorm:"foreignKey:ReceiverOfficeID;constraint:OnDelete:SET NULL"`
	PickupAddressID   *uint64             `gorm:"index"`
	PickupAddress     *AddressRecord      `gorm:"foreignKey:PickupAddressID;constraint:OnDelete:SET NULL"`
	DeliveryAddressID *uint64             `gorm:"index"`
	DeliveryAddress   *AddressRecord      `gorm:"foreignKey:DeliveryAddressID;constraint:OnDelete:SET NULL"`
	DeliveryType      string              `gorm:"size:20;not null"`
	WeightKg          decimal.Decimal     `gorm:"type:numeric(8,3);not null"`
	TariffID          *uint64             `gorm:"index"`
	Tariff            *TariffRecord       `gorm:"foreignKey:TariffID;constraint:OnDelete:SET NULL"`
	StatusCode        string              `gorm:"size:30;not null;index"`
	Status            *ParcelStatusRecord `gorm:"foreignKey:StatusCode;references:Code;constraint:OnDelete:RESTRICT"`
	RegisteredByID    *uint64             `gorm:"index"`
	RegisteredBy      *EmployeeRecord     `gorm:"foreignKey:RegisteredByID;references:UserID;constraint:OnDelete:SET NULL"`
	CreatedAt         time.Time           `gorm:"index"`
	DeliveredAt       *time.Time          `gorm:"index"`
	Version           int64               `gorm:"not null;default:1"`
}

func (ParcelRecord) TableName() string { return "parcels" }

// ParcelHistoryRecord is an append-only row of parcel_status_history.
type ParcelHistoryRecord struct {
	ID          uint64              `gorm:"primaryKey"`
	ParcelID    uint64              `gorm:"not null;index:idx_history_parcel_created,priority:1"`
	Parcel      *ParcelRecord       `gorm:"foreignKey:ParcelID;constraint:OnDelete:CASCADE"`
	StatusCode  string              `gorm:"size:30;not null"`
	Status      *ParcelStatusRecord `gorm:"foreignKey:StatusCode;references:Code;constraint:OnDelete:RESTRICT"`
	OfficeID    *uint64
	Office      *OfficeRecord `gorm:"foreignKey:OfficeID;constraint:OnDelete:SET NULL"`
	ChangedByID *uint64
	ChangedBy   *EmployeeRecord `gorm:"foreignKey:ChangedByID;references:UserID;constraint:OnDelete:SET NULL"`
	Note        string          `gorm:"size:255"`
	CreatedAt   time.Time       `gorm:"index:idx_history_parcel_created,priority:2,sort:desc"`
}

func (ParcelHistoryRecord) TableName() string { return "parcel_status_history" }

// ParcelNoteRecord is an append-only row of parcel_notes.
type ParcelNoteRecord struct {
	ID          uint64        `gorm:"primaryKey"`
	ParcelID    uint64        `gorm:"not null;index"`
	Parcel      *ParcelRecord `gorm:"foreignKey:ParcelID;constraint:OnDelete:CASCADE"`
	NoteType    string        `gorm:"size:20;not null"`
	Content     string        `gorm:"type:text;not null"`
	CreatedByID *uint64
	CreatedBy   *EmployeeRecord `gorm:"foreignKey:CreatedByID;references:UserID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time
}

func (ParcelNoteRecord) TableName() string { return "parcel_notes" }

// Models lists every record in migration order.
func Models() []interface{} {
	return []interface{}{
		&AddressRecord{},
		&UserRecord{},
		&UserAddressRecord{},
		&CompanyRecord{},
		&OfficeRecord{},
		&EmployeeRecord{},
		&TariffRecord{},
		&ParcelStatusRecord{},
		&ParcelRecord{},
		&ParcelHistoryRecord{},
		&ParcelNoteRecord{},
	}
}
