package entity

// DashboardStats are the headline counts shown after sign-in.
type DashboardStats struct {
	TotalStaff       int64 `json:"total_staff"`
	TotalCustomers   int64 `json:"total_customers"`
	TotalShipments   int64 `json:"total_shipments"`
	TotalReceipts    int64 `json:"total_receipts"`
	ArchivedReceipts int64 `json:"archived_receipts"`
}
