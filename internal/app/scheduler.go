package app

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. The default uses time.AfterFunc;
// tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// task is one cancellable timer slot. seq identifies the live schedule so a
// callback that already fired but lost the race to Stop can detect it is stale.
type task struct {
	timer Timer
	seq   uint64
}
