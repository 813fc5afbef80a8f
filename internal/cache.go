package gpuwatch

import "slices"

// hostCache memoizes the sorted hostnames of the store; the view asks for
// them on every frame while they only change with a snapshot.
type hostCache struct {
	hosts []string
}

func (c *hostCache) get(hosts map[string]*HostSeries) []string {
	if c.hosts == nil {
		c.hosts = make([]string, 0, len(hosts))
		for name := range hosts {
			c.hosts = append(c.hosts, name)
		}
		slices.Sort(c.hosts)
	}
	return c.hosts
}

func (c *hostCache) clear() {
	c.hosts = nil
}
