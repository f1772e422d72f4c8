package notificationservice

// Notice SMS-уведомление
type Notice struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}
