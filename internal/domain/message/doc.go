/*
Package message defines the envelopes exchanged between the renderer and
the host, and their wire encoding.

Every envelope is {id, type, payload}. The id is a fresh UUID per
construction and is never reused, so a resend after reconnect carries the
id it was built with. Payloads stay raw JSON until a handler decodes them
with DecodePayload; encoding uses sonic.
*/
package message
