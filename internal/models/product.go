package models

// ProductCategoryModel groups products of an event into menu sections.
type ProductCategoryModel struct {
	Base
	Name     string         `json:"name"     gorm:"not null"`
	EventID  uint           `json:"event_id" gorm:"index;not null"`
	Event    *EventModel    `json:"-"        gorm:"foreignKey:EventID"`
	Products []ProductModel `json:"products,omitempty" gorm:"foreignKey:ProductCategoryID"`
}

func (ProductCategoryModel) TableName() string { return "product_categories" }

// ProductFileModel is the stored image of a product: the generated object
// key, the original client filename, and the public object-storage URL.
type ProductFileModel struct {
	Base
	Filename         string `json:"filename"          gorm:"not null"`
	FilenameOriginal string `json:"filename_original" gorm:"not null"`
	MediaType        string `json:"media_type"        gorm:"not null"`
	Filepath         string `json:"filepath"          gorm:"type:text;not null"`
}

func (ProductFileModel) TableName() string { return "product_files" }

// ProductModel is a sellable item on a stand.
type ProductModel struct {
	Base
	Name               string                `json:"name"  gorm:"not null"`
	Price              float64               `json:"price" gorm:"not null"`
	CustomFormTemplate *string               `json:"custom_form_template"`
	ProductCategoryID  uint                  `json:"product_category_id" gorm:"index;not null"`
	StandID            uint                  `json:"stand_id"            gorm:"index;not null"`
	ProductFileID      *uint                 `json:"product_file_id"     gorm:"index"`
	ProductCategory    *ProductCategoryModel `json:"-" gorm:"foreignKey:ProductCategoryID"`
	Stand              *StandModel           `json:"-" gorm:"foreignKey:StandID"`
	ProductFile        *ProductFileModel     `json:"product_file,omitempty" gorm:"foreignKey:ProductFileID"`
}

func (ProductModel) TableName() string { return "products" }
