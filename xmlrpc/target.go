package xmlrpc

import (
	"net"
	"net/http"
	"strconv"
)

// target is the resolved connection descriptor. The client keeps one base
// target that is never modified after construction; every call clones it.
type target struct {
	host     string
	port     int
	path     string
	secure   bool
	header   http.Header
	basic    *Credentials
	digest   *Credentials
	encoding string
}

func (t *target) addr() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

func (t *target) url() string {
	scheme := "http"
	if t.secure {
		scheme = "https"
	}
	return scheme + "://" + t.addr() + t.path
}

// clone returns a copy whose header map can be changed freely.
func (t *target) clone() *target {
	c := *t
	c.header = t.header.Clone()
	if t.basic != nil {
		b := *t.basic
		c.basic = &b
	}
	if t.digest != nil {
		d := *t.digest
		c.digest = &d
	}
	return &c
}
