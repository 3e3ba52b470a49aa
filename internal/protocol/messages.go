package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	TickRateHz      int        `json:"tick_rate_hz"`
	Seed            int64      `json:"seed"`
	Spawn           [3]float64 `json:"spawn"`
}

// INPUT (client -> server): the latest control state. The server samples the
// most recent one each tick; inputs are levels, not edges, except Jump which
// is consumed on the tick it arrives.
type InputMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	MoveX           float64 `json:"move_x"`
	MoveZ           float64 `json:"move_z"`
	Jump            bool    `json:"jump,omitempty"`
	Crouch          bool    `json:"crouch,omitempty"`
}

// TUNE (client -> server): debug tuning. Pointer fields distinguish "leave
// unchanged" from an explicit zero.
type TuneMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	WaterYOffset    *float64 `json:"water_y_offset,omitempty"`
}

// STATE (server -> client): one frame of avatar state.
type StateMsg struct {
	Type            string     `json:"type"`
	Tick            uint64     `json:"tick"`
	Pos             [3]float64 `json:"pos"`
	State           string     `json:"state"`
	JumpVelocity    float64    `json:"jump_velocity"`
	JumpProgress    float64    `json:"jump_progress"`
	Crouching       bool       `json:"crouching,omitempty"`
	Swimming        bool       `json:"swimming,omitempty"`
	InAir           bool       `json:"in_air,omitempty"`
	SpeedMultiplier float64    `json:"speed_multiplier"`
	GroundBlock     string     `json:"ground_block,omitempty"`
	Events          []string   `json:"events,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
