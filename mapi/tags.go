package mapi

//go:generate mockgen -source=tags.go -destination=tags_mock.go -package mapi

// TagNamer resolves a property id to its canonical name. The default
// implementation is WellKnownTags; callers may supply their own table.
type TagNamer interface {
	TagName(id uint16) (string, bool)
}

// TagTable is a TagNamer backed by a static map.
type TagTable map[uint16]string

func (t TagTable) TagName(id uint16) (string, bool) {
	name, ok := t[id]
	return name, ok
}

// WellKnownTags holds the property ids of [MS-OXPROPS] most commonly found in
// message files. It is never modified after package initialisation.
var WellKnownTags TagNamer = wellKnownTags

var wellKnownTags = TagTable{
	0x0001: "PidTagTemplateData",
	0x0002: "PidTagAlternateRecipientAllowed",
	0x0004: "PidTagScriptData",
	0x0005: "PidTagAutoForwarded",
	0x000F: "PidTagDeferredDeliveryTime",
	0x0010: "PidTagDeliverTime",
	0x0015: "PidTagExpiryTime",
	0x0017: "PidTagImportance",
	0x001A: "PidTagMessageClass",
	0x0023: "PidTagOriginatorDeliveryReportRequested",
	0x0026: "PidTagPriority",
	0x0029: "PidTagReadReceiptRequested",
	0x002B: "PidTagRecipientReassignmentProhibited",
	0x002E: "PidTagOriginalSensitivity",
	0x0036: "PidTagSensitivity",
	0x0037: "PidTagSubject",
	0x0039: "PidTagClientSubmitTime",
	0x003B: "PidTagSentRepresentingSearchKey",
	0x003D: "PidTagSubjectPrefix",
	0x003F: "PidTagReceivedByEntryId",
	0x0040: "PidTagReceivedByName",
	0x0041: "PidTagSentRepresentingEntryId",
	0x0042: "PidTagSentRepresentingName",
	0x0043: "PidTagReceivedRepresentingEntryId",
	0x0044: "PidTagReceivedRepresentingName",
	0x0047: "PidTagMessageSubmissionId",
	0x0051: "PidTagReceivedBySearchKey",
	0x0052: "PidTagReceivedRepresentingSearchKey",
	0x0057: "PidTagMessageToMe",
	0x0058: "PidTagMessageCcMe",
	0x0060: "PidTagStartDate",
	0x0061: "PidTagEndDate",
	0x0063: "PidTagResponseRequested",
	0x0064: "PidTagSentRepresentingAddressType",
	0x0065: "PidTagSentRepresentingEmailAddress",
	0x0070: "PidTagConversationTopic",
	0x0071: "PidTagConversationIndex",
	0x0075: "PidTagReceivedByAddressType",
	0x0076: "PidTagReceivedByEmailAddress",
	0x0077: "PidTagReceivedRepresentingAddressType",
	0x0078: "PidTagReceivedRepresentingEmailAddress",
	0x007D: "PidTagTransportMessageHeaders",
	0x0C15: "PidTagRecipientType",
	0x0C17: "PidTagReplyRequested",
	0x0C19: "PidTagSenderEntryId",
	0x0C1A: "PidTagSenderName",
	0x0C1D: "PidTagSenderSearchKey",
	0x0C1E: "PidTagSenderAddressType",
	0x0C1F: "PidTagSenderEmailAddress",
	0x0E01: "PidTagDeleteAfterSubmit",
	0x0E02: "PidTagDisplayBcc",
	0x0E03: "PidTagDisplayCc",
	0x0E04: "PidTagDisplayTo",
	0x0E06: "PidTagMessageDeliveryTime",
	0x0E07: "PidTagMessageFlags",
	0x0E08: "PidTagMessageSize",
	0x0E0F: "PidTagResponsibility",
	0x0E1B: "PidTagHasAttachments",
	0x0E1D: "PidTagNormalizedSubject",
	0x0E1F: "PidTagRtfInSync",
	0x0E20: "PidTagAttachSize",
	0x0E21: "PidTagAttachNumber",
	0x0E28: "PidTagPrimarySendAccount",
	0x0E29: "PidTagNextSendAcct",
	0x0E2B: "PidTagToDoItemFlags",
	0x0E2F: "PidTagInternetMessageIdHash",
	0x0E79: "PidTagTrustSender",
	0x0FF4: "PidTagAccess",
	0x0FF6: "PidTagInstanceKey",
	0x0FF7: "PidTagAccessLevel",
	0x0FF9: "PidTagRecordKey",
	0x0FFE: "PidTagObjectType",
	0x0FFF: "PidTagEntryId",
	0x1000: "PidTagBody",
	0x1006: "PidTagRtfSyncBodyCrc",
	0x1007: "PidTagRtfSyncBodyCount",
	0x1008: "PidTagRtfSyncBodyTag",
	0x1009: "PidTagRtfCompressed",
	0x1010: "PidTagRtfSyncPrefixCount",
	0x1011: "PidTagRtfSyncTrailingCount",
	0x1013: "PidTagHtml",
	0x1035: "PidTagInternetMessageId",
	0x1039: "PidTagInternetReferences",
	0x1042: "PidTagInReplyToId",
	0x1080: "PidTagIconIndex",
	0x1081: "PidTagLastVerbExecuted",
	0x1082: "PidTagLastVerbExecutionTime",
	0x1090: "PidTagFlagStatus",
	0x1091: "PidTagFlagCompleteTime",
	0x10F4: "PidTagAttributeHidden",
	0x10F6: "PidTagAttributeReadOnly",
	0x3001: "PidTagDisplayName",
	0x3002: "PidTagAddressType",
	0x3003: "PidTagEmailAddress",
	0x3007: "PidTagCreationTime",
	0x3008: "PidTagLastModificationTime",
	0x300B: "PidTagSearchKey",
	0x3010: "PidTagTargetEntryId",
	0x3013: "PidTagChangeKey",
	0x3016: "PidTagConversationIndexTracking",
	0x3301: "PidTagFormVersion",
	0x340D: "PidTagStoreSupportMask",
	0x340F: "PidTagStoreState",
	0x3701: "PidTagAttachDataBinary",
	0x3702: "PidTagAttachEncoding",
	0x3703: "PidTagAttachExtension",
	0x3704: "PidTagAttachFilename",
	0x3705: "PidTagAttachMethod",
	0x3707: "PidTagAttachLongFilename",
	0x3708: "PidTagAttachPathname",
	0x3709: "PidTagAttachRendering",
	0x370A: "PidTagAttachTag",
	0x370B: "PidTagRenderingPosition",
	0x370E: "PidTagAttachMimeTag",
	0x3712: "PidTagAttachContentId",
	0x3713: "PidTagAttachContentLocation",
	0x3714: "PidTagAttachFlags",
	0x3716: "PidTagAttachContentDisposition",
	0x371D: "PidTagAttachmentLinkId",
	0x3900: "PidTagDisplayType",
	0x39FE: "PidTagSmtpAddress",
	0x39FF: "PidTagAddressBookDisplayNamePrintable",
	0x3A00: "PidTagAccount",
	0x3A20: "PidTagTransmittableDisplayName",
	0x3A40: "PidTagSendRichInfo",
	0x3FDE: "PidTagInternetCodepage",
	0x3FF1: "PidTagMessageLocaleId",
	0x3FF8: "PidTagCreatorName",
	0x3FF9: "PidTagCreatorEntryId",
	0x3FFA: "PidTagLastModifierName",
	0x3FFB: "PidTagLastModifierEntryId",
	0x3FFD: "PidTagMessageCodepage",
	0x4019: "PidTagSenderFlags",
	0x401A: "PidTagSentRepresentingFlags",
	0x5902: "PidTagInternetMailOverrideFormat",
	0x5909: "PidTagMessageEditorFormat",
	0x5D01: "PidTagSenderSmtpAddress",
	0x5D02: "PidTagSentRepresentingSmtpAddress",
	0x5FDE: "PidTagRecipientResourceState",
	0x5FDF: "PidTagRecipientOrder",
	0x5FF6: "PidTagRecipientDisplayName",
	0x5FF7: "PidTagRecipientEntryId",
	0x5FFB: "PidTagRecipientTrackStatusTime",
	0x5FFD: "PidTagRecipientFlags",
	0x5FFF: "PidTagRecipientTrackStatus",
	0x6619: "PidTagUserEntryId",
	0x6743: "PidTagConversationId",
	0x7FFA: "PidTagAttachmentLinkIdLegacy",
	0x7FFB: "PidTagExceptionStartTime",
	0x7FFC: "PidTagExceptionEndTime",
	0x7FFD: "PidTagAttachmentFlags",
	0x7FFE: "PidTagAttachmentHidden",
	0x7FFF: "PidTagAttachmentContactPhoto",
}
