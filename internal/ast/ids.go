package ast

type (
	FileID    uint32
	DeclID    uint32
	MemberID  uint32
	NodeID    uint32
	TypeID    uint32
	PayloadID uint32
)

const (
	NoFileID    FileID    = 0
	NoDeclID    DeclID    = 0
	NoMemberID  MemberID  = 0
	NoNodeID    NodeID    = 0
	NoTypeID    TypeID    = 0
	NoPayloadID PayloadID = 0
)

func (id FileID) IsValid() bool    { return id != NoFileID }
func (id DeclID) IsValid() bool    { return id != NoDeclID }
func (id MemberID) IsValid() bool  { return id != NoMemberID }
func (id NodeID) IsValid() bool    { return id != NoNodeID }
func (id TypeID) IsValid() bool    { return id != NoTypeID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
