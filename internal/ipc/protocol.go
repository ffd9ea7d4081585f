package ipc

// Request is one CLI command forwarded to the daemon. Arg carries the
// command's optional operand (a profile name or ID, a disable duration,
// a device ID) verbatim.
type Request struct {
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
}

// Status mirrors the daemon's activation state for the CLI.
type Status struct {
	ActiveProfileID   string `json:"active_profile_id,omitempty"`
	ActiveProfileName string `json:"active_profile_name,omitempty"`
	Mode              string `json:"mode"`
	AutoSwitching     string `json:"auto_switching"`
	SuspendedUntil    string `json:"suspended_until,omitempty"`
	SuspendRemaining  string `json:"suspend_remaining,omitempty"`
}

// ProfileInfo is one profile row in list responses.
type ProfileInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Triggers int    `json:"triggers"`
}

// DeviceInfo is one device row in devices/history responses.
type DeviceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Input     bool   `json:"input"`
	Output    bool   `json:"output"`
	LastSeen  string `json:"last_seen,omitempty"`
}

type Response struct {
	OK       bool          `json:"ok"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Status   *Status       `json:"status,omitempty"`
	Profiles []ProfileInfo `json:"profiles,omitempty"`
	Devices  []DeviceInfo  `json:"devices,omitempty"`
}
