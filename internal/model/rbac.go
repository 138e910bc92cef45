package model

type Role struct {
	Base
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	IsSystemRole bool   `db:"is_system_role" json:"is_system_role"`
}
