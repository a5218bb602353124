// Package codec serializes XML-RPC method calls and responses.
//
// The XML codec maps Go values onto the XML-RPC value types and back. It is
// symmetric: the client uses EncodeCall and DecodeResponse, the server uses
// DecodeCall, EncodeResponse and EncodeFault.
//
//	c := codec.NewXML(codec.WithEncoding("iso-8859-1"))
//	body, err := c.EncodeCall("sample.add", []any{2, 3})
package codec
