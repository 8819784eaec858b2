package dispatch

// Command is a single wire command byte (spec.md §4.7 / §6).
type Command byte

const (
	CmdMount  Command = 0x00
	CmdUmount Command = 0x01

	CmdOpendir  Command = 0x10
	CmdReaddir  Command = 0x11
	CmdClosedir Command = 0x12
	CmdMkdir    Command = 0x13
	CmdRmdir    Command = 0x14
	CmdTelldir  Command = 0x15
	CmdSeekdir  Command = 0x16
	CmdOpendirx Command = 0x17
	CmdReaddirx Command = 0x18

	CmdRead   Command = 0x21
	CmdWrite  Command = 0x22
	CmdClose  Command = 0x23
	CmdStat   Command = 0x24
	CmdSeek   Command = 0x25
	CmdUnlink Command = 0x26
	CmdChmod  Command = 0x27
	CmdRename Command = 0x28
	CmdOpen   Command = 0x29

	// Informational commands. spec.md §4.7 names these by function
	// (VERSION, SIZE, FREE) without fixing wire values; the byte choice
	// below is this daemon's own, chosen to sit in the unused 0x30 block
	// above the file-operation range.
	CmdVersion Command = 0x30
	CmdSize    Command = 0x31
	CmdFree    Command = 0x32
)
