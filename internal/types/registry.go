package types

// Well-known PostgreSQL built-in type OIDs, as published in PostgreSQL's
// pg_type catalog. These are stable across server versions.
const (
	OIDBool        uint32 = 16
	OIDBytea       uint32 = 17
	OIDInt8        uint32 = 20
	OIDInt2        uint32 = 21
	OIDInt4        uint32 = 23
	OIDText        uint32 = 25
	OIDJSON        uint32 = 114
	OIDPoint       uint32 = 600
	OIDLine        uint32 = 628
	OIDLSeg        uint32 = 601
	OIDPath        uint32 = 602
	OIDBox         uint32 = 603
	OIDPolygon     uint32 = 604
	OIDFloat4      uint32 = 700
	OIDFloat8      uint32 = 701
	OIDCircle      uint32 = 718
	OIDMoney       uint32 = 790
	OIDMACAddr     uint32 = 829
	OIDInet        uint32 = 869
	OIDCIDR        uint32 = 650
	OIDVarchar     uint32 = 1043
	OIDDate        uint32 = 1082
	OIDTime        uint32 = 1083
	OIDTimestamp   uint32 = 1114
	OIDTimestampTZ uint32 = 1184
	OIDInterval    uint32 = 1186
	OIDBit         uint32 = 1560
	OIDVarBit      uint32 = 1562
	OIDNumeric     uint32 = 1700
	OIDUUID        uint32 = 2950
	OIDJSONB       uint32 = 3802
	OIDMACAddr8    uint32 = 774
	OIDTSVector    uint32 = 3614
	OIDTSQuery     uint32 = 3615
)

// Codec binds a PostgreSQL type OID to a category name and a constructor
// for a fresh, addressable zero value implementing the relevant subset of
// TextScanner/BinaryScanner/TextFormatter/BinaryFormatter. The table serves
// OID lookups (Lookup); the decoder does not consult it, and instead
// dispatches on the scanner methods of the destination field's own type.
type Codec struct {
	Name string
	OID  uint32
	New  func() any
}

// Registry maps well-known OIDs to their codec. Domain and array OIDs
// (assigned per-database) are not in this table; callers resolve those
// through the category's base codec plus the array/composite grammar in
// array.go/composite.go.
var Registry = map[uint32]Codec{
	OIDUUID:        {Name: "uuid", OID: OIDUUID, New: func() any { return new(UUID) }},
	OIDDate:        {Name: "date", OID: OIDDate, New: func() any { return new(Date) }},
	OIDTime:        {Name: "time", OID: OIDTime, New: func() any { return new(Clock) }},
	OIDTimestamp:   {Name: "timestamp", OID: OIDTimestamp, New: func() any { return new(Timestamp) }},
	OIDTimestampTZ: {Name: "timestamptz", OID: OIDTimestampTZ, New: func() any { return new(TimestampTZ) }},
	OIDInterval:    {Name: "interval", OID: OIDInterval, New: func() any { return new(Interval) }},
	OIDNumeric:     {Name: "numeric", OID: OIDNumeric, New: func() any { return new(Decimal) }},
	OIDMoney:       {Name: "money", OID: OIDMoney, New: func() any { return new(Money) }},
	OIDPoint:       {Name: "point", OID: OIDPoint, New: func() any { return new(Point) }},
	OIDLine:        {Name: "line", OID: OIDLine, New: func() any { return new(Line) }},
	OIDLSeg:        {Name: "lseg", OID: OIDLSeg, New: func() any { return new(LineSegment) }},
	OIDBox:         {Name: "box", OID: OIDBox, New: func() any { return new(Box) }},
	OIDPath:        {Name: "path", OID: OIDPath, New: func() any { return new(Path) }},
	OIDPolygon:     {Name: "polygon", OID: OIDPolygon, New: func() any { return new(Polygon) }},
	OIDCircle:      {Name: "circle", OID: OIDCircle, New: func() any { return new(Circle) }},
	OIDInet:        {Name: "inet", OID: OIDInet, New: func() any { return new(Inet) }},
	OIDCIDR:        {Name: "cidr", OID: OIDCIDR, New: func() any { return new(CIDR) }},
	OIDMACAddr:     {Name: "macaddr", OID: OIDMACAddr, New: func() any { return new(MACAddress) }},
	OIDMACAddr8:    {Name: "macaddr8", OID: OIDMACAddr8, New: func() any { return new(MACAddress) }},
	OIDBit:         {Name: "bit", OID: OIDBit, New: func() any { return new(BitString) }},
	OIDVarBit:      {Name: "varbit", OID: OIDVarBit, New: func() any { return new(BitString) }},
	OIDJSON:        {Name: "json", OID: OIDJSON, New: func() any { return new(JSON) }},
	OIDJSONB:       {Name: "jsonb", OID: OIDJSONB, New: func() any { return new(JSONB) }},
	OIDTSVector:    {Name: "tsvector", OID: OIDTSVector, New: func() any { return new(TSVector) }},
	OIDTSQuery:     {Name: "tsquery", OID: OIDTSQuery, New: func() any { return new(TSQuery) }},
}

// Lookup returns the codec registered for oid, and whether one was found.
func Lookup(oid uint32) (Codec, bool) {
	c, ok := Registry[oid]
	return c, ok
}
