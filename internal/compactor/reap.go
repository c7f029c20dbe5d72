package compactor

// PostRun kills any stray descendants left behind by a simulator
// invocation that didn't exit cleanly (e.g. VC-Z01X license daemons
// spawned by a compile step). Grounded on the original tool's
// reap_process_tree(os.getpid()) cleanup call, but targets the process
// groups the Invoker actually spawned rather than guessing at a0's own
// process group.
func (l *Loop) PostRun() {
	l.invoker.Reap()
}
