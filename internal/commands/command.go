package commands

// Name identifies which command a parsed Command carries. Using a flat,
// string-tagged struct rather than one Go type per command keeps dispatch
// a single switch, matching the shape of the teacher's own packet handler.
type Name string

const (
	NameQuestionMark      Name = "?"
	NameQSupported        Name = "qSupported"
	NameQStartNoAckMode   Name = "QStartNoAckMode"
	NameQXferFeaturesRead Name = "qXfer:features:read"
	NameQAttached         Name = "qAttached"
	NameG                 Name = "g"
	NameGUpper            Name = "G"
	NameM                 Name = "m"
	NameMUpper            Name = "M"
	NameX                 Name = "X"
	NameP                 Name = "p"
	NamePUpper            Name = "P"
	NameH                 Name = "H"
	NameK                 Name = "k"
	NameVKill             Name = "vKill"
	NameD                 Name = "D"
	NameVContQuery        Name = "vCont?"
	NameVCont             Name = "vCont"
	NameC                 Name = "c"
	NameS                 Name = "s"
	NameQfThreadInfo      Name = "qfThreadInfo"
	NameQsThreadInfo      Name = "qsThreadInfo"
	NameT                 Name = "T"
	Namez                 Name = "z"
	NameZ                 Name = "Z"

	NameExclamationMark          Name = "!"
	NameQDisableRandomization    Name = "QDisableRandomization"
	NameQEnvironmentHexEncoded   Name = "QEnvironmentHexEncoded"
	NameQEnvironmentReset        Name = "QEnvironmentReset"
	NameQEnvironmentUnset        Name = "QEnvironmentUnset"
	NameQSetWorkingDir           Name = "QSetWorkingDir"
	NameQStartupWithShell        Name = "QStartupWithShell"
	NameR                        Name = "R"
	NameVAttach                  Name = "vAttach"
	NameVRun                     Name = "vRun"

	NameQRcmd    Name = "qRcmd"
	NameQOffsets Name = "qOffsets"
	NameQAgent   Name = "QAgent"

	NameUnknown Name = ""
)

// ResumeActionSpec is one action clause of a parsed vCont packet, e.g.
// "c" or "s:1f" or "C05:1f".
type ResumeActionSpec struct {
	// Action is one of 'c', 'C', 's', 'S', 'r'.
	Action byte
	Signal uint8
	// RangeLo/RangeHi are valid only when Action == 'r'.
	RangeLo, RangeHi uint64
	// Thread is the thread this action applies to; absent (no ":tid"
	// suffix) means "the default action for every thread not otherwise
	// named", matching vCont's trailing bare action convention.
	HasThread bool
	Thread    ThreadID
}

// Command is the parsed, capability-checked result of one packet body.
// Only the fields relevant to Name are populated; the handler core knows
// which fields to read for each Name.
type Command struct {
	Name Name

	// AddrBytes is the raw big-endian address payload for m/M/X/z/Z,
	// still undecoded: the handler core feeds it through the
	// architecture's AddrFromBEBytes so an address width mismatch surfaces
	// as TargetMismatch rather than being silently truncated here.
	AddrBytes []byte
	Addr      uint64
	Length    uint64
	Data      []byte // decoded (already un-hexed) payload, for M/G/X writes

	BreakpointType int // z/Z "type" field: 0=sw,1=hw,2=write-watch,3=read-watch,4=access-watch
	BreakpointKind uint64
	CondBytecode   [][]byte
	CmdBytecode    [][]byte
	CmdPersist     bool

	RegNum   int
	RegValue []byte

	// Thread is the parsed thread-id field for H and T.
	Thread ThreadID
	// HOp is 'g' (other, i.e. memory/register ops) or 'c' (step/continue)
	// for an H command.
	HOp byte

	// PID is set for commands carrying a bare pid argument (vKill,
	// vAttach, D in multiprocess form). -1 means absent.
	PID int32

	Signal uint8

	Actions []ResumeActionSpec

	EnvKey   []byte
	EnvValue []byte
	Dir      []byte
	Filename []byte
	Args     [][]byte

	Enabled bool

	// Raw carries a free-form argument that doesn't fit the generic fields
	// above: the client's feature list for qSupported, the hex-decoded
	// console command for qRcmd, or the whole body of an Unknown packet.
	Raw []byte
}
