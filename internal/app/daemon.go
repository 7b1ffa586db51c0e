package app

// DaemonStatus represents current information about the local daemon.
type DaemonStatus struct {
	Running bool
	PID     int
	Port    uint16
}

// Status returns whether the local daemon is running and its PID if known.
func (a *App) Status() (DaemonStatus, error) {
	cfg, err := a.Config()
	if err != nil {
		return DaemonStatus{}, err
	}
	st := DaemonStatus{Port: cfg.Port}
	if !daemonIsRunning(cfg.Port) {
		return st, nil
	}
	st.Running = true
	pid, err := daemonPID(cfg.Port)
	if err != nil {
		return st, err
	}
	st.PID = pid
	return st, nil
}
