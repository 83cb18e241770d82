package rbac

import "github.com/odyssey-erp/odyssey-pos/internal/shared"

// Permission names guarded by route middleware.
const (
	PermCatalogView  = "catalog.view"
	PermCatalogEdit  = "catalog.edit"
	PermPOSSell      = "pos.sell"
	PermOrdersView   = "orders.view"
	PermClientsView  = "clients.view"
	PermClientsEdit  = "clients.edit"
	PermPayrollView  = "payroll.view"
	PermPayrollEdit  = "payroll.edit"
	PermExpensesView = "expenses.view"
	PermExpensesEdit = "expenses.edit"
	PermReportsView  = "reports.view"
	PermDataExport   = "data.export"
	PermDataImport   = "data.import"
	PermAdminTenants = "admin.tenants"
	PermAdminBilling = "admin.billing"
	PermUsersView    = "users.view"
	PermUsersEdit    = "users.edit"
	PermAuditView    = "audit.view"
)

var tenantPermissions = []string{
	PermCatalogView,
	PermCatalogEdit,
	PermPOSSell,
	PermOrdersView,
	PermClientsView,
	PermClientsEdit,
	PermPayrollView,
	PermPayrollEdit,
	PermExpensesView,
	PermExpensesEdit,
	PermReportsView,
	PermDataExport,
	PermDataImport,
	PermUsersView,
	PermUsersEdit,
}

// rolePermissions is the fixed grant table. Roles are not editable at runtime.
var rolePermissions = map[string][]string{
	shared.RoleSuperAdmin: append(append([]string{}, tenantPermissions...), PermAdminTenants, PermAdminBilling, PermAuditView),
	shared.RoleAdmin:      tenantPermissions,
	shared.RoleCashier: {
		PermCatalogView,
		PermPOSSell,
		PermOrdersView,
		PermClientsView,
		PermExpensesView,
	},
}

// Roles lists the known role names.
func Roles() []string {
	return []string{shared.RoleSuperAdmin, shared.RoleAdmin, shared.RoleCashier}
}
