package commands

// HelpText lists every command.
const HelpText = `Available commands:
!token_profile [address] - Get token profile
!token_orders [chainId] [address] - Get token orders
!pair_info [chainId] [pairId] - Get pair information
!twitter_check [username] - Check Twitter username history
!gen_wallet - Generate a new SOL wallet
!connect - Connect wallet
!bundler - View token bundler interface
!onchainactions - View OnChain actions interface
!volumebot - View Anti-MEV Volume Bot interface
!help - Show this help message

For any other queries, just type your question and I'll assist you.`
