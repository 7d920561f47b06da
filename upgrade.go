// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/enums/methods.rs (VersionUpgradePolicy)
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/decode/dbn.rs (record upgrade-on-read)

package dbn

// targetVersionFor resolves the in-memory version a decoder should produce for a
// stream whose wire version is wireVersion, given policy. It rejects the one
// combination that can't be satisfied: UpgradeToV2 applied to a version-3 input.
func targetVersionFor(wireVersion uint8, policy VersionUpgradePolicy) (uint8, error) {
	switch policy {
	case AsIs:
		return wireVersion, nil
	case UpgradeToV2:
		if wireVersion > HeaderVersion2 {
			return 0, NewDecodeError("cannot apply UpgradeToV2 to version-3 input; use AsIs or UpgradeToV3")
		}
		if wireVersion < HeaderVersion2 {
			return HeaderVersion2, nil
		}
		return wireVersion, nil
	case UpgradeToV3:
		if wireVersion < HeaderVersion3 {
			return HeaderVersion3, nil
		}
		return wireVersion, nil
	default:
		return wireVersion, nil
	}
}

// applyMetadataUpgrade mutates m in place to reflect the version upgrade policy:
// VersionNum advances to the target version, and SymbolCstrLen widens from the v1
// 22-byte convention to the v2+ 71-byte convention when the target version moved
// past v1. This only adjusts the metadata's own advertised shape; it must run
// after any record-level decode has already captured the wire's true
// SymbolCstrLen for its own use (see DbnScanner.wireSymbolCstrLen).
func applyMetadataUpgrade(m *Metadata, policy VersionUpgradePolicy) error {
	target, err := targetVersionFor(m.VersionNum, policy)
	if err != nil {
		return err
	}
	if target == m.VersionNum {
		return nil
	}
	if m.VersionNum < HeaderVersion2 && target >= HeaderVersion2 {
		m.SymbolCstrLen = MetadataV2_SymbolCstrLen
	}
	m.VersionNum = target
	return nil
}

// upgradeInstrumentDefRef converts a decoded instrument-definition record of wire
// version wireVersion up to targetVersion and returns it wrapped in a RecordRef.
// wireVersion == targetVersion returns the record unchanged, preserving zero-copy
// semantics in the common (no-upgrade) case.
func upgradeInstrumentDefRef(wireVersion, targetVersion uint8, v1 *InstrumentDefMsg, v2 *InstrumentDefMsgV2, v3 *InstrumentDefMsgV3, rtype RType) RecordRef {
	switch wireVersion {
	case HeaderVersion1:
		if targetVersion == HeaderVersion1 {
			return NewRecordRef(v1, rtype)
		}
		upgraded := InstrumentDefMsgV2FromV1(v1)
		if targetVersion == HeaderVersion2 {
			return NewRecordRef(upgraded, rtype)
		}
		return NewRecordRef(InstrumentDefMsgV3FromV2(upgraded), rtype)
	case HeaderVersion2:
		if targetVersion <= HeaderVersion2 {
			return NewRecordRef(v2, rtype)
		}
		return NewRecordRef(InstrumentDefMsgV3FromV2(v2), rtype)
	default:
		return NewRecordRef(v3, rtype)
	}
}

// upgradeErrorRef converts a decoded error record from wireVersion (1/2 share the
// ErrorMsg shape) to targetVersion.
func upgradeErrorRef(wireVersion, targetVersion uint8, v1 *ErrorMsg, v3 *ErrorMsgV3, rtype RType) RecordRef {
	if wireVersion <= HeaderVersion2 && targetVersion == HeaderVersion3 {
		return NewRecordRef(v1.ToV3(), rtype)
	}
	if wireVersion <= HeaderVersion2 {
		return NewRecordRef(v1, rtype)
	}
	return NewRecordRef(v3, rtype)
}

// upgradeSystemRef converts a decoded system record from wireVersion to targetVersion.
func upgradeSystemRef(wireVersion, targetVersion uint8, v1 *SystemMsg, v3 *SystemMsgV3, rtype RType) RecordRef {
	if wireVersion <= HeaderVersion2 && targetVersion == HeaderVersion3 {
		return NewRecordRef(v1.ToV3(), rtype)
	}
	if wireVersion <= HeaderVersion2 {
		return NewRecordRef(v1, rtype)
	}
	return NewRecordRef(v3, rtype)
}

// upgradeStatRef converts a decoded statistics record from wireVersion to targetVersion.
func upgradeStatRef(wireVersion, targetVersion uint8, v1 *StatMsg, v3 *StatMsgV3, rtype RType) RecordRef {
	if wireVersion <= HeaderVersion2 && targetVersion == HeaderVersion3 {
		return NewRecordRef(v1.ToV3(), rtype)
	}
	if wireVersion <= HeaderVersion2 {
		return NewRecordRef(v1, rtype)
	}
	return NewRecordRef(v3, rtype)
}
