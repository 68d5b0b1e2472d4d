// Package permission holds the role matrix every screen and route consults to
// decide what a member may see or do. It is a UX and routing aid; data access is
// still scoped by workspace in the repositories.
package permission

import "go-pos-ws/internal/model"

type Resource string

type Action string

const (
	Products Resource = "products"
	Sales    Resource = "sales"
	Cash     Resource = "cash"
	Reports  Resource = "reports"
	Users    Resource = "users"
)

const (
	View   Action = "view"
	Create Action = "create"
	Edit   Action = "edit"
	Delete Action = "delete"
	Manage Action = "manage"
)

var (
	everyone = []model.Role{model.RoleAdmin, model.RoleManager, model.RoleCashier, model.RoleViewer}
	staff    = []model.Role{model.RoleAdmin, model.RoleManager}
	sellers  = []model.Role{model.RoleAdmin, model.RoleManager, model.RoleCashier}
)

// Matrix maps resource → action → permitted roles. Pairs absent here deny.
var Matrix = map[Resource]map[Action][]model.Role{
	Products: {
		View:   everyone,
		Create: staff,
		Edit:   staff,
		Delete: staff,
	},
	Sales: {
		View:   everyone,
		Create: sellers,
	},
	Cash: {
		View:   everyone,
		Create: sellers,
	},
	Reports: {
		View: {model.RoleAdmin, model.RoleManager, model.RoleViewer},
	},
	Users: {
		View:   {model.RoleAdmin},
		Manage: {model.RoleAdmin},
	},
}

// Can reports whether role may perform action on resource. An empty role denies.
func Can(role model.Role, resource Resource, action Action) bool {
	if role == "" {
		return false
	}
	for _, allowed := range Matrix[resource][action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Granted lists "resource:action" codes role holds, for clients that render menus.
func Granted(role model.Role) []string {
	var codes []string
	for _, res := range []Resource{Products, Sales, Cash, Reports, Users} {
		for _, act := range []Action{View, Create, Edit, Delete, Manage} {
			if Can(role, res, act) {
				codes = append(codes, string(res)+":"+string(act))
			}
		}
	}
	return codes
}

// Labels are the display names of each role.
var Labels = map[model.Role]string{
	model.RoleAdmin:   "Administrador",
	model.RoleManager: "Gerente",
	model.RoleCashier: "Cajero",
	model.RoleViewer:  "Visualizador",
}
