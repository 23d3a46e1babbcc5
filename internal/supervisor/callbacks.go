package supervisor

// Chain combines callback sets. Each event is delivered to every set in
// order; OnFailure handlers run one after another on the launch goroutine.
func Chain(sets ...Callbacks) Callbacks {
	return Callbacks{
		OnStateChange: func(oldState, newState State) {
			for _, cb := range sets {
				if cb.OnStateChange != nil {
					cb.OnStateChange(oldState, newState)
				}
			}
		},
		OnStart: func(pid int) {
			for _, cb := range sets {
				if cb.OnStart != nil {
					cb.OnStart(pid)
				}
			}
		},
		OnExit: func(pid int, exitCode int) {
			for _, cb := range sets {
				if cb.OnExit != nil {
					cb.OnExit(pid, exitCode)
				}
			}
		},
		OnFailure: func(err *LaunchError) {
			for _, cb := range sets {
				if cb.OnFailure != nil {
					cb.OnFailure(err)
				}
			}
		},
		OnTerminate: func(pid int) {
			for _, cb := range sets {
				if cb.OnTerminate != nil {
					cb.OnTerminate(pid)
				}
			}
		},
	}
}
