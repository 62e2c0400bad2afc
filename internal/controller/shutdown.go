package controller

// Close stops the controller goroutine, cancels in-flight requests and waits
// for their workers to return. No view method is called after Close returns.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		<-c.loopDone
		c.group.Dispose()
		c.logInfo("Controller closed")
	})
}

// Done is closed once Close has been called.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
