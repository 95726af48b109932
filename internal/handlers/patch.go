package handlers

import "strings"

// columnSet collects the assignments of a partial update. Only fields that
// were present in the request are recorded.
type columnSet map[string]interface{}

func (s columnSet) text(column string, value *string) {
	if value != nil {
		s[column] = strings.TrimSpace(*value)
	}
}

func (s columnSet) number(column string, value *float64) {
	if value != nil {
		s[column] = *value
	}
}

func (s columnSet) flag(column string, value *bool) {
	if value != nil {
		s[column] = *value
	}
}

// destinationPatch is the optional-field body of PUT /destinos/:id.
type destinationPatch struct {
	Name        *string  `json:"nombre" form:"nombre"`
	Price       *float64 `json:"precio" form:"precio"`
	City        *string  `json:"ciudad" form:"ciudad"`
	Country     *string  `json:"pais" form:"pais"`
	Image       *string  `json:"imagen" form:"imagen"`
	Description *string  `json:"descripcion" form:"descripcion"`
	Featured    *bool    `json:"destacado" form:"destacado"`
	Active      *bool    `json:"activo" form:"activo"`
}

func (p destinationPatch) columns() columnSet {
	set := columnSet{}
	set.text("nombre", p.Name)
	set.number("precio", p.Price)
	set.text("ciudad", p.City)
	set.text("pais", p.Country)
	set.text("imagen", p.Image)
	set.text("descripcion", p.Description)
	set.flag("destacado", p.Featured)
	set.flag("activo", p.Active)
	return set
}

// companyPatch is the optional-field body of PUT /empresas/:id.
type companyPatch struct {
	Name        *string `json:"nombre" form:"nombre"`
	Type        *string `json:"tipo" form:"tipo"`
	Logo        *string `json:"logo" form:"logo"`
	Description *string `json:"descripcion" form:"descripcion"`
	Website     *string `json:"sitio_web" form:"sitio_web"`
	Active      *bool   `json:"activo" form:"activo"`
}

func (p companyPatch) columns() columnSet {
	set := columnSet{}
	set.text("nombre", p.Name)
	set.text("tipo", p.Type)
	set.text("logo", p.Logo)
	set.text("descripcion", p.Description)
	set.text("sitio_web", p.Website)
	set.flag("activo", p.Active)
	return set
}
