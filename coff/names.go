package coff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var machineNames = map[MachineType]string{
	MachineUnknown:   "unknown",
	MachineAM33:      "am33",
	MachineAMD64:     "amd64",
	MachineARM:       "arm",
	MachineARMNT:     "armnt",
	MachineARM64:     "arm64",
	MachineEBC:       "ebc",
	MachineI386:      "i386",
	MachineIA64:      "ia64",
	MachineM32R:      "m32r",
	MachineMIPS16:    "mips16",
	MachineMIPSFPU:   "mipsfpu",
	MachineMIPSFPU16: "mipsfpu16",
	MachinePowerPC:   "powerpc",
	MachinePowerPCFP: "powerpcfp",
	MachineR4000:     "r4000",
	MachineSH3:       "sh3",
	MachineSH3DSP:    "sh3dsp",
	MachineSH4:       "sh4",
	MachineSH5:       "sh5",
	MachineThumb:     "thumb",
	MachineWCEMIPSV2: "wcemipsv2",
}

func (m MachineType) String() string {
	if s, ok := machineNames[m]; ok {
		return s
	}
	return fmt.Sprintf("machine(0x%04x)", uint16(m))
}

var storageClassNames = map[StorageClass]string{
	ClassEndOfFunction:   "end_of_function",
	ClassNull:            "null",
	ClassAutomatic:       "automatic",
	ClassExternal:        "external",
	ClassStatic:          "static",
	ClassRegister:        "register",
	ClassExternalDef:     "external_def",
	ClassLabel:           "label",
	ClassUndefinedLabel:  "undefined_label",
	ClassMemberOfStruct:  "member_of_struct",
	ClassArgument:        "argument",
	ClassStructTag:       "struct_tag",
	ClassMemberOfUnion:   "member_of_union",
	ClassUnionTag:        "union_tag",
	ClassTypeDefinition:  "type_definition",
	ClassUndefinedStatic: "undefined_static",
	ClassEnumTag:         "enum_tag",
	ClassMemberOfEnum:    "member_of_enum",
	ClassRegisterParam:   "register_param",
	ClassBitField:        "bit_field",
	ClassBlock:           "block",
	ClassFunction:        "function",
	ClassEndOfStruct:     "end_of_struct",
	ClassFile:            "file",
	ClassSection:         "section",
	ClassWeakExternal:    "weak_external",
	ClassCLRToken:        "clr_token",
}

func (c StorageClass) String() string {
	if s, ok := storageClassNames[c]; ok {
		return s
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

var baseTypeNames = map[BaseType]string{
	TypeNull:   "null",
	TypeVoid:   "void",
	TypeChar:   "char",
	TypeShort:  "short",
	TypeInt:    "int",
	TypeLong:   "long",
	TypeFloat:  "float",
	TypeDouble: "double",
	TypeStruct: "struct",
	TypeUnion:  "union",
	TypeEnum:   "enum",
	TypeMOE:    "moe",
	TypeByte:   "byte",
	TypeWord:   "word",
	TypeUint:   "uint",
	TypeDWord:  "dword",
}

var complexTypeNames = map[ComplexType]string{
	ComplexNull:     "null",
	ComplexPointer:  "pointer",
	ComplexFunction: "function",
	ComplexArray:    "array",
}

func (t BaseType) String() string {
	if s, ok := baseTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

func (t ComplexType) String() string {
	if s, ok := complexTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

func (t SymbolType) String() string {
	return t.Base.String() + "/" + t.Complex.String()
}

var relocationNames = map[MachineType]map[RelocationType]string{
	MachineI386: {
		RelI386Absolute: "absolute",
		RelI386Dir16:    "dir16",
		RelI386Rel16:    "rel16",
		RelI386Dir32:    "dir32",
		RelI386Dir32NB:  "dir32nb",
		RelI386Seg12:    "seg12",
		RelI386Section:  "section",
		RelI386SecRel:   "secrel",
		RelI386Token:    "token",
		RelI386SecRel7:  "secrel7",
		RelI386Rel32:    "rel32",
	},
	MachineAMD64: {
		RelAMD64Absolute: "absolute",
		RelAMD64Addr64:   "addr64",
		RelAMD64Addr32:   "addr32",
		RelAMD64Addr32NB: "addr32nb",
		RelAMD64Rel32:    "rel32",
		RelAMD64Rel32_1:  "rel32_1",
		RelAMD64Rel32_2:  "rel32_2",
		RelAMD64Rel32_3:  "rel32_3",
		RelAMD64Rel32_4:  "rel32_4",
		RelAMD64Rel32_5:  "rel32_5",
		RelAMD64Section:  "section",
		RelAMD64SecRel:   "secrel",
		RelAMD64SecRel7:  "secrel7",
		RelAMD64Token:    "token",
		RelAMD64SRel32:   "srel32",
		RelAMD64Pair:     "pair",
		RelAMD64SSpan32:  "sspan32",
	},
	MachineARMNT: {
		RelARMAbsolute:  "absolute",
		RelARMAddr32:    "addr32",
		RelARMAddr32NB:  "addr32nb",
		RelARMBranch24:  "branch24",
		RelARMBranch11:  "branch11",
		RelARMToken:     "token",
		RelARMBLX24:     "blx24",
		RelARMBLX11:     "blx11",
		RelARMSection:   "section",
		RelARMSecRel:    "secrel",
		RelARMMov32A:    "mov32a",
		RelARMMov32T:    "mov32t",
		RelARMBranch20T: "branch20t",
		RelARMBranch24T: "branch24t",
		RelARMBLX23T:    "blx23t",
	},
	MachineARM64: {
		RelARM64Absolute:      "absolute",
		RelARM64Addr32:        "addr32",
		RelARM64Addr32NB:      "addr32nb",
		RelARM64Branch26:      "branch26",
		RelARM64PageBaseRel21: "pagebase_rel21",
		RelARM64Rel21:         "rel21",
		RelARM64PageOffset12A: "pageoffset_12a",
		RelARM64PageOffset12L: "pageoffset_12l",
		RelARM64SecRel:        "secrel",
		RelARM64SecRelLow12A:  "secrel_low12a",
		RelARM64SecRelHigh12A: "secrel_high12a",
		RelARM64SecRelLow12L:  "secrel_low12l",
		RelARM64Token:         "token",
		RelARM64Section:       "section",
		RelARM64Addr64:        "addr64",
	},
}

// relocationFamily maps machines that share a relocation table.
func relocationFamily(m MachineType) MachineType {
	switch m {
	case MachineARM, MachineThumb:
		return MachineARMNT
	}
	return m
}

// Name returns the name of t as interpreted for machine m, or a hex code
// when m has no table or t is not in it.
func (t RelocationType) Name(m MachineType) string {
	if names, ok := relocationNames[relocationFamily(m)]; ok {
		if s, ok := names[t]; ok {
			return s
		}
	}
	return fmt.Sprintf("0x%04x", uint16(t))
}

// ParseMachine parses a machine name or numeric code.
func ParseMachine(s string) (MachineType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, name := range machineNames {
		if name == key {
			return m, nil
		}
	}
	switch key {
	case "x86", "386":
		return MachineI386, nil
	case "x64", "x86_64", "x86-64":
		return MachineAMD64, nil
	case "aarch64":
		return MachineARM64, nil
	}
	v, err := strconv.ParseUint(key, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown machine %q", s)
	}
	return MachineType(v), nil
}

// ParseStorageClass parses a storage class name or number.
func ParseStorageClass(s string) (StorageClass, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, name := range storageClassNames {
		if name == key {
			return c, nil
		}
	}
	v, err := strconv.ParseUint(key, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown storage class %q", s)
	}
	return StorageClass(v), nil
}

// ParseBaseType parses a base type name or number.
func ParseBaseType(s string) (BaseType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range baseTypeNames {
		if name == key {
			return t, nil
		}
	}
	v, err := strconv.ParseUint(key, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown base type %q", s)
	}
	return BaseType(v), nil
}

// ParseComplexType parses a complex type name or number.
func ParseComplexType(s string) (ComplexType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range complexTypeNames {
		if name == key {
			return t, nil
		}
	}
	v, err := strconv.ParseUint(key, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown complex type %q", s)
	}
	return ComplexType(v), nil
}

// ParseRelocationType parses a relocation name as interpreted for machine m,
// or a numeric code.
func ParseRelocationType(m MachineType, s string) (RelocationType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if names, ok := relocationNames[relocationFamily(m)]; ok {
		for t, name := range names {
			if name == key {
				return t, nil
			}
		}
	}
	v, err := strconv.ParseUint(key, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown relocation type %q for %s", s, m)
	}
	return RelocationType(v), nil
}

var sectionFlagNames = map[string]SectionFlags{
	"type_no_pad":            SectionTypeNoPad,
	"cnt_code":               SectionCntCode,
	"cnt_initialized_data":   SectionCntInitializedData,
	"cnt_uninitialized_data": SectionCntUninitializedData,
	"lnk_other":              SectionLnkOther,
	"lnk_info":               SectionLnkInfo,
	"lnk_remove":             SectionLnkRemove,
	"lnk_comdat":             SectionLnkComdat,
	"gprel":                  SectionGPRel,
	"mem_purgeable":          SectionMemPurgeable,
	"mem_locked":             SectionMemLocked,
	"mem_preload":            SectionMemPreload,
	"lnk_nreloc_ovfl":        SectionLnkNRelocOvfl,
	"mem_discardable":        SectionMemDiscardable,
	"mem_not_cached":         SectionMemNotCached,
	"mem_not_paged":          SectionMemNotPaged,
	"mem_shared":             SectionMemShared,
	"mem_execute":            SectionMemExecute,
	"mem_read":               SectionMemRead,
	"mem_write":              SectionMemWrite,
}

// ParseSectionFlag parses one section characteristic. Alignments are
// written "align_<n>" with n a power of two up to 8192.
func ParseSectionFlag(s string) (SectionFlags, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if f, ok := sectionFlagNames[key]; ok {
		return f, nil
	}
	if n, ok := strings.CutPrefix(key, "align_"); ok {
		v, err := strconv.ParseUint(n, 10, 32)
		if err == nil {
			if f := AlignFlag(uint32(v)); f != 0 {
				return f, nil
			}
		}
		return 0, fmt.Errorf("invalid section alignment %q", s)
	}
	v, err := strconv.ParseUint(key, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown section flag %q", s)
	}
	return SectionFlags(v), nil
}

// Names lists the flag names set in f, alignment last.
func (f SectionFlags) Names() []string {
	var out []string
	rest := f &^ sectionAlignMask
	for name, bit := range sectionFlagNames {
		if rest&bit == bit {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	if a := f.Alignment(); a != 0 {
		out = append(out, "align_"+strconv.FormatUint(uint64(a), 10))
	}
	return out
}

var fileFlagNames = map[string]FileFlags{
	"relocs_stripped":         FileRelocsStripped,
	"executable_image":        FileExecutableImage,
	"line_nums_stripped":      FileLineNumsStripped,
	"local_syms_stripped":     FileLocalSymsStripped,
	"aggressive_ws_trim":      FileAggressiveWSTrim,
	"large_address_aware":     FileLargeAddressAware,
	"bytes_reversed_lo":       FileBytesReversedLo,
	"32bit_machine":           File32BitMachine,
	"debug_stripped":          FileDebugStripped,
	"removable_run_from_swap": FileRemovableRunFromSwap,
	"net_run_from_swap":       FileNetRunFromSwap,
	"system":                  FileSystem,
	"dll":                     FileDLL,
	"up_system_only":          FileUPSystemOnly,
	"bytes_reversed_hi":       FileBytesReversedHi,
}

// ParseFileFlag parses one file header characteristic.
func ParseFileFlag(s string) (FileFlags, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if f, ok := fileFlagNames[key]; ok {
		return f, nil
	}
	v, err := strconv.ParseUint(key, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown file flag %q", s)
	}
	return FileFlags(v), nil
}

// Names lists the flag names set in f.
func (f FileFlags) Names() []string {
	var out []string
	for name, bit := range fileFlagNames {
		if f&bit == bit {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
