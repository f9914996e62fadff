package node

//go:generate go tool stringer -type=DispatcherEnum -trimprefix=Dispatcher -output=kind_string.go

// DispatcherEnum names the way values of a source type populate a target type.
type DispatcherEnum int

const (
	DispatcherUnknown    DispatcherEnum = iota // no population is possible
	DispatcherSimple                           // leaf value conversion
	DispatcherRuntime                          // decided from the runtime value, one side is an interface
	DispatcherEnumerable                       // element by element into a slice or an array
	DispatcherDictionary                       // entry by entry into a map
	DispatcherComplex                          // member by member into an object
	DispatcherFlatten                          // object into a string keyed dictionary
	DispatcherUnflatten                        // string keyed dictionary into an object

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)
