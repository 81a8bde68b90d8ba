package galaxy

type Resources struct {
	Metal     int64 `json:"metal"`
	Crystal   int64 `json:"crystal"`
	Deuterium int64 `json:"deuterium"`
}

func (r Resources) Total() int64 {
	return r.Metal + r.Crystal + r.Deuterium
}

func (r Resources) IsZero() bool {
	return r.Metal == 0 && r.Crystal == 0 && r.Deuterium == 0
}

func (r Resources) Add(o Resources) Resources {
	return Resources{
		Metal:     r.Metal + o.Metal,
		Crystal:   r.Crystal + o.Crystal,
		Deuterium: r.Deuterium + o.Deuterium,
	}
}

// Covers reports whether r is enough to pay for o in every resource kind.
func (r Resources) Covers(o Resources) bool {
	return r.Metal >= o.Metal && r.Crystal >= o.Crystal && r.Deuterium >= o.Deuterium
}
