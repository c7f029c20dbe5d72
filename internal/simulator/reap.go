package simulator

import (
	"os"
	"syscall"
)

// setpgidAttr places every spawned child in its own process group so a
// timeout can kill the whole subtree (make, the simulator binary, and
// anything they fork) in one signal instead of leaving orphans behind.
func setpgidAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func writeFile(path string, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
