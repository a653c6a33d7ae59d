package model

// DefaultCatalog returns the built-in message catalog used when no external
// catalog data file is configured. Its contents are a representative
// subset of the full uplink/downlink element table (itself an external data
// table, not specified by this repository) sufficient to exercise dialogue
// tracking, STANDBY handling and logical acknowledgements end to end.
func DefaultCatalog() *Catalog {
	return NewCatalog([]CatalogEntry{
		{Id: "UM20", Direction: Uplink, Template: "CLIMB TO [level]", ArgTypes: []ArgKind{ArgLevel}, ResponseAttr: RespondWilcoUnable, Fans: true, AtnB1: true},
		{Id: "UM19", Direction: Uplink, Template: "MAINTAIN [level]", ArgTypes: []ArgKind{ArgLevel}, ResponseAttr: RespondWilcoUnable, Fans: true, AtnB1: true},
		{Id: "UM0", Direction: Uplink, Template: "WILCO", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "UM1", Direction: Uplink, Template: "UNABLE", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "UM2", Direction: Uplink, Template: "STANDBY", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "UM3", Direction: Uplink, Template: "ROGER", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "UM169", Direction: Uplink, Template: "FREE TEXT [text]", ArgTypes: []ArgKind{ArgFreeText}, ResponseAttr: RespondRoger, Fans: true, AtnB1: true},
		{Id: "UM227", Direction: Uplink, Template: "LOGICAL ACKNOWLEDGEMENT", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "DM0", Direction: Downlink, Template: "WILCO", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "DM1", Direction: Downlink, Template: "UNABLE", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "DM2", Direction: Downlink, Template: "STANDBY", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "DM3", Direction: Downlink, Template: "ROGER", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
		{Id: "DM67", Direction: Downlink, Template: "FREE TEXT [text]", ArgTypes: []ArgKind{ArgFreeText}, ResponseAttr: RespondRoger, Fans: true, AtnB1: true},
		{Id: "DM100", Direction: Downlink, Template: "LOGICAL ACKNOWLEDGEMENT", ArgTypes: nil, ResponseAttr: RespondNoResponse, Fans: true, AtnB1: true},
	})
}
