package sdk

import "github.com/pluce/openlink/internal/olerr"

// Every SDK operation returns a plain error tagged through internal/olerr;
// callers use olerr.Of(err) to branch on Configuration/Authentication/
// Transport/Serialization. Re-exported here so SDK consumers don't need to
// import the internal package directly.
type Kind = olerr.Kind

const (
	KindConfiguration  = olerr.KindConfiguration
	KindAuthentication = olerr.KindAuthentication
	KindTransport      = olerr.KindTransport
	KindSerialization  = olerr.KindSerialization
)

// ErrorKind extracts the Kind carried by an SDK error, or KindUnknown.
func ErrorKind(err error) Kind { return olerr.Of(err) }
