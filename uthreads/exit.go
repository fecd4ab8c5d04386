package uthreads

import "os"

// osExit is a var, not a direct os.Exit call, so tests can observe fatal
// paths without actually terminating the test binary.
var osExit = os.Exit
