package products

type ProductForm struct {
	ID          int64  `json:"id"`
	Description string `json:"description" validate:"required,max=255"`
	IsActive    *bool  `json:"isActive"`
}
