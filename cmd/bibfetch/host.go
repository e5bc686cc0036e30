package main

import (
	"fmt"

	"github.com/fwojciec/bibfetch/nativemsg"
)

// Run executes the host command. Stdout carries protocol frames only;
// diagnostics go to stderr.
func (c *HostCmd) Run(deps *Dependencies) error {
	deps.Logger.Info("native messaging host started")
	if err := nativemsg.NewHost(deps.Service).Serve(deps.Ctx, deps.Stdin, deps.Stdout); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}
