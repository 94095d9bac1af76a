// Package record defines the signed, named entities of the naming service:
// leaf records that point at content, and domain records that own a table of
// child records. It also implements the canonical signable payload encoding
// and the trust-chain sign/verify protocol.
package record
