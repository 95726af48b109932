package models

// Destination is a promoted travel destination shown on the storefront.
// Rows are never removed; Active=false hides them.
type Destination struct {
	BaseModel
	Name        string  `gorm:"column:nombre" json:"nombre"`
	Price       float64 `gorm:"column:precio" json:"precio"`
	City        string  `gorm:"column:ciudad" json:"ciudad"`
	Country     string  `gorm:"column:pais" json:"pais"`
	Image       string  `gorm:"column:imagen" json:"imagen"`
	Description string  `gorm:"column:descripcion" json:"descripcion"`
	Featured    bool    `gorm:"column:destacado;default:false" json:"destacado"`
	Active      bool    `gorm:"column:activo;default:true" json:"activo"`
}

func (Destination) TableName() string { return "destinos" }

// Company is a carrier (airline or bus operator).
type Company struct {
	BaseModel
	Name        string `gorm:"column:nombre" json:"nombre"`
	Type        string `gorm:"column:tipo" json:"tipo"`
	Logo        string `gorm:"column:logo" json:"logo"`
	Description string `gorm:"column:descripcion" json:"descripcion"`
	Website     string `gorm:"column:sitio_web" json:"sitio_web"`
	Active      bool   `gorm:"column:activo;default:true" json:"activo"`
}

func (Company) TableName() string { return "empresas" }
