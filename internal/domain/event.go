package domain

// Event names published to board subscribers
const (
	EventTaskCreated    = "taskCreated"
	EventTaskUpdated    = "taskUpdated"
	EventTaskDeleted    = "taskDeleted"
	EventTaskMoved      = "taskMoved"
	EventTaskAssigned   = "taskAssigned"
	EventTaskUnassigned = "taskUnassigned"
	EventListCreated    = "listCreated"
	EventListUpdated    = "listUpdated"
	EventListDeleted    = "listDeleted"
	EventActivityNew    = "activity:new"
)
