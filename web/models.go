package web

// HealthBody is the liveness payload.
type HealthBody struct {
	Status string `json:"status" example:"ok" doc:"Always ok while the process serves requests"`
}

type HealthOutput struct {
	Body HealthBody
}
