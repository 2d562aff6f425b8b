package common

const (
	// API_TASKS is used to get or dispatch tasks
	API_TASKS = "/api/v1/tasks"

	// API_GROUPS is used to get or create task groups
	API_GROUPS = "/api/v1/groups"

	// API_WORKERS is used to list known workers
	API_WORKERS = "/api/v1/workers"
)
