package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/xmlrpc/codec"
)

// WriteFault aborts the request with an XML-RPC fault body. Faults are sent
// with 200 OK so clients decode them as protocol-level errors.
func WriteFault(c *gin.Context, cd codec.Codec, f *codec.Fault) {
	body, err := cd.EncodeFault(f)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Abort()
	c.Data(http.StatusOK, "text/xml; charset=utf-8", body)
}
