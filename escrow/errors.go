package escrow

// Contract error codes, mirrored from the deployed contract so simulation
// diagnostics can be surfaced by name instead of a bare number.
const (
	ErrCodeAlreadyInitialized = 1000
	ErrCodeFeeTooHigh         = 1001
	ErrCodeNotOwner           = 1002
	ErrCodeNotInitialized     = 1003

	ErrCodeEscrowNotFound      = 1100
	ErrCodeEscrowNotActive     = 1101
	ErrCodeInvalidEscrowStatus = 1102
	ErrCodeWorkAlreadyStarted  = 1103
	ErrCodeWorkNotStarted      = 1104

	ErrCodeJobCreationPaused      = 1200
	ErrCodeInvalidDuration        = 1201
	ErrCodeMilestoneCountMismatch = 1202
	ErrCodeTooManyMilestones      = 1203
	ErrCodeTooManyArbiters        = 1204
	ErrCodeInvalidConfirmations   = 1205
	ErrCodeTokenNotWhitelisted    = 1206

	ErrCodeNotOpenJob           = 1300
	ErrCodeJobClosed            = 1301
	ErrCodeCannotApplyToOwnJob  = 1302
	ErrCodeTooManyApplications  = 1303
	ErrCodeOnlyDepositor        = 1304
	ErrCodeFreelancerNotApplied = 1305
	ErrCodeAlreadyApplied       = 1306

	ErrCodeInvalidMilestone          = 1400
	ErrCodeMilestoneAlreadySubmitted = 1401
	ErrCodeMilestoneNotSubmitted     = 1402
	ErrCodeMilestoneAlreadyProcessed = 1403

	ErrCodeNothingToRefund           = 1500
	ErrCodeDeadlineNotPassed         = 1501
	ErrCodeEmergencyPeriodNotReached = 1502
	ErrCodeCannotRefund              = 1503
	ErrCodeInvalidExtension          = 1504
	ErrCodeCannotExtend              = 1505

	ErrCodeOnlyBeneficiary = 1600
	ErrCodeUnauthorized    = 1601

	ErrCodeInvalidAmount    = 1700
	ErrCodeInvalidAddress   = 1701
	ErrCodeInvalidParameter = 1702

	ErrCodeEscrowNotCompleted     = 1800
	ErrCodeRatingAlreadySubmitted = 1801
	ErrCodeInvalidRating          = 1802
	ErrCodeOnlyDepositorCanRate   = 1803
)

var contractErrorNames = map[uint32]string{
	ErrCodeAlreadyInitialized: "AlreadyInitialized",
	ErrCodeFeeTooHigh:         "FeeTooHigh",
	ErrCodeNotOwner:           "NotOwner",
	ErrCodeNotInitialized:     "NotInitialized",

	ErrCodeEscrowNotFound:      "EscrowNotFound",
	ErrCodeEscrowNotActive:     "EscrowNotActive",
	ErrCodeInvalidEscrowStatus: "InvalidEscrowStatus",
	ErrCodeWorkAlreadyStarted:  "WorkAlreadyStarted",
	ErrCodeWorkNotStarted:      "WorkNotStarted",

	ErrCodeJobCreationPaused:      "JobCreationPaused",
	ErrCodeInvalidDuration:        "InvalidDuration",
	ErrCodeMilestoneCountMismatch: "MilestoneCountMismatch",
	ErrCodeTooManyMilestones:      "TooManyMilestones",
	ErrCodeTooManyArbiters:        "TooManyArbiters",
	ErrCodeInvalidConfirmations:   "InvalidConfirmations",
	ErrCodeTokenNotWhitelisted:    "TokenNotWhitelisted",

	ErrCodeNotOpenJob:           "NotOpenJob",
	ErrCodeJobClosed:            "JobClosed",
	ErrCodeCannotApplyToOwnJob:  "CannotApplyToOwnJob",
	ErrCodeTooManyApplications:  "TooManyApplications",
	ErrCodeOnlyDepositor:        "OnlyDepositor",
	ErrCodeFreelancerNotApplied: "FreelancerNotApplied",
	ErrCodeAlreadyApplied:       "AlreadyApplied",

	ErrCodeInvalidMilestone:          "InvalidMilestone",
	ErrCodeMilestoneAlreadySubmitted: "MilestoneAlreadySubmitted",
	ErrCodeMilestoneNotSubmitted:     "MilestoneNotSubmitted",
	ErrCodeMilestoneAlreadyProcessed: "MilestoneAlreadyProcessed",

	ErrCodeNothingToRefund:           "NothingToRefund",
	ErrCodeDeadlineNotPassed:         "DeadlineNotPassed",
	ErrCodeEmergencyPeriodNotReached: "EmergencyPeriodNotReached",
	ErrCodeCannotRefund:              "CannotRefund",
	ErrCodeInvalidExtension:          "InvalidExtension",
	ErrCodeCannotExtend:              "CannotExtend",

	ErrCodeOnlyBeneficiary: "OnlyBeneficiary",
	ErrCodeUnauthorized:    "Unauthorized",

	ErrCodeInvalidAmount:    "InvalidAmount",
	ErrCodeInvalidAddress:   "InvalidAddress",
	ErrCodeInvalidParameter: "InvalidParameter",

	ErrCodeEscrowNotCompleted:     "EscrowNotCompleted",
	ErrCodeRatingAlreadySubmitted: "RatingAlreadySubmitted",
	ErrCodeInvalidRating:          "InvalidRating",
	ErrCodeOnlyDepositorCanRate:   "OnlyDepositorCanRate",
}

// ContractErrorName resolves a contract error code to its symbolic name.
func ContractErrorName(code uint32) (string, bool) {
	name, ok := contractErrorNames[code]
	return name, ok
}
