package wire

import stderrors "errors"

var (
	errTruncated       = stderrors.New("truncated buffer")
	errBadFieldSize    = stderrors.New("field size must be 1, 2 or 4 bytes")
	errLeftoverBytes   = stderrors.New("leftover bytes inside TLV body")
	errDoesNotFit      = stderrors.New("forged TLVs exceed max length")
	errTlvTooLarge     = stderrors.New("single TLV exceeds fragment MSS")
	errWrongEtherType  = stderrors.New("wrong EtherType for a 1905 frame")
	errFrameTooShort   = stderrors.New("frame shorter than Ethernet+CMDU header")
	errBadVersion      = stderrors.New("unsupported CMDU version")
	errChildCountLimit = stderrors.New("child list exceeds 255 entries")
)
