package report

// Outcome is the single externally visible result of reconciling one host.
type Outcome struct {
	Host      string `json:"host,omitempty" yaml:"host,omitempty"`
	Changed   bool   `json:"changed" yaml:"changed"`
	Failed    bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
	Msg       string `json:"msg" yaml:"msg"`
	Action    string `json:"action,omitempty" yaml:"action,omitempty"`
	CheckMode bool   `json:"check_mode,omitempty" yaml:"check_mode,omitempty"`
}

// Status is the one-word summary used by the text format.
func (o Outcome) Status() string {
	switch {
	case o.Failed:
		return "failed"
	case o.Changed:
		return "changed"
	default:
		return "ok"
	}
}
