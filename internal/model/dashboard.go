package model

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindAuth          ErrorKind = "auth"
	KindNotFound      ErrorKind = "not_found"
	KindTransient     ErrorKind = "transient"
)

// DashboardError is the user-facing form of a failed lookup.
type DashboardError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// DashboardState is what a client renders. Result and Error are never both set.
type DashboardState struct {
	ID        string          `json:"id"`
	CityInput string          `json:"cityInput"`
	Result    *WeatherResult  `json:"result,omitempty"`
	Error     *DashboardError `json:"error,omitempty"`
	Loading   bool            `json:"loading"`
	Advice    string          `json:"advice,omitempty"`
}

// Status derives the controller state from the fields.
func (s DashboardState) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Result != nil:
		return StatusSuccess
	case s.Error != nil:
		return StatusFailed
	default:
		return StatusIdle
	}
}

// DashboardView is the JSON shape returned by the dashboard endpoints.
type DashboardView struct {
	DashboardState
	Status Status `json:"status"`
}

func (s DashboardState) View() DashboardView {
	return DashboardView{DashboardState: s, Status: s.Status()}
}
