package domain

// Event names published on the in-process bus and relayed to Kafka. UI glue
// and external consumers subscribe to these; they never touch the store
// directly.
const (
	EventProductsUpdated      = "productsUpdated"
	EventUsersUpdated         = "usersUpdated"
	EventOrderCreated         = "orderCreated"
	EventOrderUpdated         = "orderUpdated"
	EventPaymentProcessed     = "paymentProcessed"
	EventUserLoggedIn         = "userLoggedIn"
	EventUserLoggedOut        = "userLoggedOut"
	EventApplicationSubmitted = "applicationSubmitted"
	EventApplicationReviewed  = "applicationReviewed"
)

const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Change is the payload for every bus event: the action kind plus the
// affected entity.
type Change struct {
	Action string `json:"action"`
	Entity any    `json:"entity"`
}
