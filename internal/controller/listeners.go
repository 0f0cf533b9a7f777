package controller

// Subscribe returns a channel that receives a ping whenever the state changes.
// Pings carry no data; listeners re-read State. Pings are coalesced when a
// listener falls behind. Call Unsubscribe when done.
func (c *Controller) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.listeners[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (c *Controller) Unsubscribe(ch chan struct{}) {
	c.mu.Lock()
	_, ok := c.listeners[ch]
	delete(c.listeners, ch)
	c.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (c *Controller) broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ch := range c.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
