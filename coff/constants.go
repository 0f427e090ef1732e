package coff

// Record sizes in the object file layout.
const (
	FileHeaderSize    = 20
	SectionHeaderSize = 40
	RelocationSize    = 10
	SymbolRecordSize  = 18
	AuxRecordSize     = SymbolRecordSize
	NameFieldSize     = 8

	// LineNumberBlockSize is the zero block emitted per section in place of
	// line-number records.
	LineNumberBlockSize = 8

	// StringTableBias is added to blob positions to form string table
	// offsets. The first four bytes of the table hold its own length.
	StringTableBias = 4

	// MaxNameOffset is the largest string table offset a Name may carry. It
	// keeps the "/NNNNNNN" section-name form within eight bytes.
	MaxNameOffset = 9999999

	// MaxAuxRecords is the largest auxiliary record count a symbol can carry.
	MaxAuxRecords = 255
)

// MachineType identifies the target CPU of an object file.
type MachineType uint16

const (
	MachineUnknown   MachineType = 0x0
	MachineAM33      MachineType = 0x1d3
	MachineAMD64     MachineType = 0x8664
	MachineARM       MachineType = 0x1c0
	MachineARMNT     MachineType = 0x1c4
	MachineARM64     MachineType = 0xaa64
	MachineEBC       MachineType = 0xebc
	MachineI386      MachineType = 0x14c
	MachineIA64      MachineType = 0x200
	MachineM32R      MachineType = 0x9041
	MachineMIPS16    MachineType = 0x266
	MachineMIPSFPU   MachineType = 0x366
	MachineMIPSFPU16 MachineType = 0x466
	MachinePowerPC   MachineType = 0x1f0
	MachinePowerPCFP MachineType = 0x1f1
	MachineR4000     MachineType = 0x166
	MachineSH3       MachineType = 0x1a2
	MachineSH3DSP    MachineType = 0x1a3
	MachineSH4       MachineType = 0x1a6
	MachineSH5       MachineType = 0x1a8
	MachineThumb     MachineType = 0x1c2
	MachineWCEMIPSV2 MachineType = 0x169
)

// FileFlags are the file header characteristics.
type FileFlags uint16

const (
	FileRelocsStripped       FileFlags = 0x0001
	FileExecutableImage      FileFlags = 0x0002
	FileLineNumsStripped     FileFlags = 0x0004
	FileLocalSymsStripped    FileFlags = 0x0008
	FileAggressiveWSTrim     FileFlags = 0x0010
	FileLargeAddressAware    FileFlags = 0x0020
	FileBytesReversedLo      FileFlags = 0x0080
	File32BitMachine         FileFlags = 0x0100
	FileDebugStripped        FileFlags = 0x0200
	FileRemovableRunFromSwap FileFlags = 0x0400
	FileNetRunFromSwap       FileFlags = 0x0800
	FileSystem               FileFlags = 0x1000
	FileDLL                  FileFlags = 0x2000
	FileUPSystemOnly         FileFlags = 0x4000
	FileBytesReversedHi      FileFlags = 0x8000
)

// SectionFlags are the section header characteristics.
type SectionFlags uint32

const (
	SectionTypeNoPad            SectionFlags = 0x00000008
	SectionCntCode              SectionFlags = 0x00000020
	SectionCntInitializedData   SectionFlags = 0x00000040
	SectionCntUninitializedData SectionFlags = 0x00000080
	SectionLnkOther             SectionFlags = 0x00000100
	SectionLnkInfo              SectionFlags = 0x00000200
	SectionLnkRemove            SectionFlags = 0x00000800
	SectionLnkComdat            SectionFlags = 0x00001000
	SectionGPRel                SectionFlags = 0x00008000
	SectionMemPurgeable         SectionFlags = 0x00020000
	SectionMem16Bit             SectionFlags = 0x00020000
	SectionMemLocked            SectionFlags = 0x00040000
	SectionMemPreload           SectionFlags = 0x00080000
	SectionLnkNRelocOvfl        SectionFlags = 0x01000000
	SectionMemDiscardable       SectionFlags = 0x02000000
	SectionMemNotCached         SectionFlags = 0x04000000
	SectionMemNotPaged          SectionFlags = 0x08000000
	SectionMemShared            SectionFlags = 0x10000000
	SectionMemExecute           SectionFlags = 0x20000000
	SectionMemRead              SectionFlags = 0x40000000
	SectionMemWrite             SectionFlags = 0x80000000
)

// Alignment occupies bits 20..23 of the section characteristics.
const (
	SectionAlign1Bytes    SectionFlags = 0x00100000
	SectionAlign2Bytes    SectionFlags = 0x00200000
	SectionAlign4Bytes    SectionFlags = 0x00300000
	SectionAlign8Bytes    SectionFlags = 0x00400000
	SectionAlign16Bytes   SectionFlags = 0x00500000
	SectionAlign32Bytes   SectionFlags = 0x00600000
	SectionAlign64Bytes   SectionFlags = 0x00700000
	SectionAlign128Bytes  SectionFlags = 0x00800000
	SectionAlign256Bytes  SectionFlags = 0x00900000
	SectionAlign512Bytes  SectionFlags = 0x00a00000
	SectionAlign1024Bytes SectionFlags = 0x00b00000
	SectionAlign2048Bytes SectionFlags = 0x00c00000
	SectionAlign4096Bytes SectionFlags = 0x00d00000
	SectionAlign8192Bytes SectionFlags = 0x00e00000

	sectionAlignMask SectionFlags = 0x00f00000
)

const sectionAlignShift = 20

// AlignFlag returns the alignment flag for a power-of-two byte alignment
// between 1 and 8192, or 0 when n is not such a value.
func AlignFlag(n uint32) SectionFlags {
	for i := uint32(0); i < 14; i++ {
		if n == 1<<i {
			return SectionFlags(i+1) << sectionAlignShift
		}
	}
	return 0
}

// Alignment returns the byte alignment encoded in f, or 0 when none is set.
func (f SectionFlags) Alignment() uint32 {
	v := uint32(f&sectionAlignMask) >> sectionAlignShift
	if v == 0 || v > 14 {
		return 0
	}
	return 1 << (v - 1)
}

// StorageClass is the role of a symbol.
type StorageClass uint8

const (
	ClassEndOfFunction   StorageClass = 0xff
	ClassNull            StorageClass = 0
	ClassAutomatic       StorageClass = 1
	ClassExternal        StorageClass = 2
	ClassStatic          StorageClass = 3
	ClassRegister        StorageClass = 4
	ClassExternalDef     StorageClass = 5
	ClassLabel           StorageClass = 6
	ClassUndefinedLabel  StorageClass = 7
	ClassMemberOfStruct  StorageClass = 8
	ClassArgument        StorageClass = 9
	ClassStructTag       StorageClass = 10
	ClassMemberOfUnion   StorageClass = 11
	ClassUnionTag        StorageClass = 12
	ClassTypeDefinition  StorageClass = 13
	ClassUndefinedStatic StorageClass = 14
	ClassEnumTag         StorageClass = 15
	ClassMemberOfEnum    StorageClass = 16
	ClassRegisterParam   StorageClass = 17
	ClassBitField        StorageClass = 18
	ClassBlock           StorageClass = 100
	ClassFunction        StorageClass = 101
	ClassEndOfStruct     StorageClass = 102
	ClassFile            StorageClass = 103
	ClassSection         StorageClass = 104
	ClassWeakExternal    StorageClass = 105
	ClassCLRToken        StorageClass = 107
)

// BaseType is the low byte of a symbol type.
type BaseType uint8

const (
	TypeNull   BaseType = 0
	TypeVoid   BaseType = 1
	TypeChar   BaseType = 2
	TypeShort  BaseType = 3
	TypeInt    BaseType = 4
	TypeLong   BaseType = 5
	TypeFloat  BaseType = 6
	TypeDouble BaseType = 7
	TypeStruct BaseType = 8
	TypeUnion  BaseType = 9
	TypeEnum   BaseType = 10
	TypeMOE    BaseType = 11
	TypeByte   BaseType = 12
	TypeWord   BaseType = 13
	TypeUint   BaseType = 14
	TypeDWord  BaseType = 15
)

// ComplexType is the high byte of a symbol type.
type ComplexType uint8

const (
	ComplexNull     ComplexType = 0
	ComplexPointer  ComplexType = 1
	ComplexFunction ComplexType = 2
	ComplexArray    ComplexType = 3
)

// SymbolType is the two-byte type descriptor of a symbol record.
type SymbolType struct {
	Base    BaseType
	Complex ComplexType
}

// FunctionType is the type Microsoft tools give function symbols.
var FunctionType = SymbolType{Base: TypeNull, Complex: ComplexFunction}

// RelocationType is a machine-specific relocation code. The same code point
// means different things on different machines; see Name.
type RelocationType uint16

// I386 relocation types.
const (
	RelI386Absolute RelocationType = 0x0000
	RelI386Dir16    RelocationType = 0x0001
	RelI386Rel16    RelocationType = 0x0002
	RelI386Dir32    RelocationType = 0x0006
	RelI386Dir32NB  RelocationType = 0x0007
	RelI386Seg12    RelocationType = 0x0009
	RelI386Section  RelocationType = 0x000a
	RelI386SecRel   RelocationType = 0x000b
	RelI386Token    RelocationType = 0x000c
	RelI386SecRel7  RelocationType = 0x000d
	RelI386Rel32    RelocationType = 0x0014
)

// AMD64 relocation types.
const (
	RelAMD64Absolute RelocationType = 0x0000
	RelAMD64Addr64   RelocationType = 0x0001
	RelAMD64Addr32   RelocationType = 0x0002
	RelAMD64Addr32NB RelocationType = 0x0003
	RelAMD64Rel32    RelocationType = 0x0004
	RelAMD64Rel32_1  RelocationType = 0x0005
	RelAMD64Rel32_2  RelocationType = 0x0006
	RelAMD64Rel32_3  RelocationType = 0x0007
	RelAMD64Rel32_4  RelocationType = 0x0008
	RelAMD64Rel32_5  RelocationType = 0x0009
	RelAMD64Section  RelocationType = 0x000a
	RelAMD64SecRel   RelocationType = 0x000b
	RelAMD64SecRel7  RelocationType = 0x000c
	RelAMD64Token    RelocationType = 0x000d
	RelAMD64SRel32   RelocationType = 0x000e
	RelAMD64Pair     RelocationType = 0x000f
	RelAMD64SSpan32  RelocationType = 0x0010
)

// ARM relocation types.
const (
	RelARMAbsolute  RelocationType = 0x0000
	RelARMAddr32    RelocationType = 0x0001
	RelARMAddr32NB  RelocationType = 0x0002
	RelARMBranch24  RelocationType = 0x0003
	RelARMBranch11  RelocationType = 0x0004
	RelARMToken     RelocationType = 0x0005
	RelARMBLX24     RelocationType = 0x0008
	RelARMBLX11     RelocationType = 0x0009
	RelARMSection   RelocationType = 0x000e
	RelARMSecRel    RelocationType = 0x000f
	RelARMMov32A    RelocationType = 0x0010
	RelARMMov32T    RelocationType = 0x0011
	RelARMBranch20T RelocationType = 0x0012
	RelARMBranch24T RelocationType = 0x0014
	RelARMBLX23T    RelocationType = 0x0015
)

// ARM64 relocation types.
const (
	RelARM64Absolute      RelocationType = 0x0000
	RelARM64Addr32        RelocationType = 0x0001
	RelARM64Addr32NB      RelocationType = 0x0002
	RelARM64Branch26      RelocationType = 0x0003
	RelARM64PageBaseRel21 RelocationType = 0x0004
	RelARM64Rel21         RelocationType = 0x0005
	RelARM64PageOffset12A RelocationType = 0x0006
	RelARM64PageOffset12L RelocationType = 0x0007
	RelARM64SecRel        RelocationType = 0x0008
	RelARM64SecRelLow12A  RelocationType = 0x0009
	RelARM64SecRelHigh12A RelocationType = 0x000a
	RelARM64SecRelLow12L  RelocationType = 0x000b
	RelARM64Token         RelocationType = 0x000c
	RelARM64Section       RelocationType = 0x000d
	RelARM64Addr64        RelocationType = 0x000e
)
