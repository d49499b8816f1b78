package user

import "sort"

// AllFrontFields are the case fields the front end can render as editable.
var AllFrontFields = []string{
	"registroPpu",
	"abogado",
	"denunciado",
	"origen",
	"nrDeExpCompleto",
	"fiscaliaOrigen",
	"departamento",
	"juzgado",
	"delito",
	"informeJuridico",
	"item",
	"eSituacional",
	"fechaIngreso",
	"etiqueta",
	"fechaDeArchivo",
	"razonArchivo",
}

var (
	adminColumns = []string{
		"abogado",
		"denunciado",
		"origen",
		"nr de exp completo",
		"delito",
		"departamento",
		"fiscalia",
		"juzgado",
		"informe_juridico",
		"item",
		"e_situacional",
		"etiqueta",
	}
	userColumns = []string{"etiqueta"}
)

// AllowedFields returns the sorted front-end fields u may edit. Only admins
// edit, and an admin's entry may lock or narrow the set.
func AllowedFields(u *User) []string {
	if u == nil || u.Role != RoleAdmin || u.EditLocked {
		return []string{}
	}
	deny := make(map[string]struct{}, len(u.DenyFields))
	for _, f := range u.DenyFields {
		deny[f] = struct{}{}
	}
	out := make([]string, 0, len(AllFrontFields))
	for _, f := range AllFrontFields {
		if _, ok := deny[f]; !ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// CanEdit reports whether u has at least one editable field.
func CanEdit(u *User) bool {
	return len(AllowedFields(u)) > 0
}

// UpdatableColumns lists the store columns role may write. The boolean is
// false for an unknown role.
func UpdatableColumns(role Role) ([]string, bool) {
	var cols []string
	switch role {
	case RoleAdmin:
		cols = adminColumns
	case RoleUser:
		cols = userColumns
	default:
		return nil, false
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, true
}
