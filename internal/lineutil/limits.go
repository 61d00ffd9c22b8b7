package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Flex message alt text length

	// Request limits
	MaxMessagesPerRequest  = 5   // push, multicast and reply
	MaxMulticastRecipients = 500 // multicast "to" array

	// Flex Message Limits
	MaxFlexCarouselBubbleCount = 12 // Max bubbles in a Flex carousel
)
