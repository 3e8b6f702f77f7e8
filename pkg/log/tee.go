package log

// Tee returns a Logger that hands each event to every given sink in order.
// Nil sinks and NoopLoggers are dropped and nested tees are flattened. With
// nothing left Tee returns NoopLogger{}; with a single sink it returns that
// sink unwrapped.
func Tee(sinks ...Logger) Logger {
	t := make(tee, 0, len(sinks))
	for _, s := range sinks {
		switch s := s.(type) {
		case nil, NoopLogger:
		case tee:
			t = append(t, s...)
		default:
			t = append(t, s)
		}
	}
	switch len(t) {
	case 0:
		return NoopLogger{}
	case 1:
		return t[0]
	}
	return t
}

type tee []Logger

func (t tee) Log(event Event) {
	for _, s := range t {
		s.Log(event)
	}
}
