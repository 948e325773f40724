package ember

// initializeServices moves every registered service instance from injected
// to initialized. Called once per run, after injection has completed for the
// whole entity graph. The first init failure is fatal.
func initializeServices(c *Container) error {
	for _, svc := range c.ServiceInstances() {
		if err := svc.OnInit(); err != nil {
			return err
		}
	}
	return nil
}

// destroyServices moves every registered service instance to destroyed.
// Every instance is attempted independently: a failing destroy hook is
// logged and recorded but never stops the remaining instances from being
// torn down. The returned slice holds the per-instance failures.
func destroyServices(c *Container) []error {
	var failures []error
	for _, svc := range c.ServiceInstances() {
		if err := svc.OnDestroy(); err != nil {
			failures = append(failures, err)
			Error("Service destroy hook failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return failures
}
