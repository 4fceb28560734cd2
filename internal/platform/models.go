package platform

// Tenant 多租户体系中的一个商户账户（后端目录的镜像结构）。
type Tenant struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	BusinessName  string `json:"businessName"`
	IsActive      bool   `json:"isActive"`
	Plan          string `json:"plan,omitempty"`
	Owner         *User  `json:"owner,omitempty"`
	ProductsCount int    `json:"productsCount,omitempty"`
	OrdersCount   int    `json:"ordersCount,omitempty"`
}

// User 平台用户（后端目录的镜像结构）。
type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Fullname string  `json:"fullname"`
	Role     string  `json:"role,omitempty"` // OWNER, ADMIN, STAFF, SUPER_ADMIN
	IsActive bool    `json:"isActive"`
	TenantID string  `json:"tenantId,omitempty"`
	Tenant   *Tenant `json:"tenant,omitempty"`
}

// Metrics 平台总览指标，后端不可用时以零值兜底展示。
type Metrics struct {
	TotalTenants  int      `json:"totalTenants"`
	TotalUsers    int      `json:"totalUsers"`
	TotalRevenue  float64  `json:"totalRevenue"`
	RecentTenants []Tenant `json:"recentTenants"`
}
