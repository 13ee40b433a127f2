package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract identifies one of the three deployed contracts the backend talks
// to. The contracts themselves are an already-deployed external service; only
// their ABIs are carried here.
type Contract string

const (
	ContractSupplyChain Contract = "SupplyChain"
	ContractDocuments   Contract = "DocumentVerification"
	ContractPayments    Contract = "SupplyChainPayment"
)

const supplyChainABI = `[
  {"type":"function","name":"createProduct","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"description","type":"string"},{"name":"price","type":"uint256"}],"outputs":[{"name":"productId","type":"uint256"}]},
  {"type":"function","name":"addShipmentUpdate","stateMutability":"nonpayable","inputs":[{"name":"productId","type":"uint256"},{"name":"location","type":"string"},{"name":"notes","type":"string"},{"name":"status","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"getProductDetails","stateMutability":"view","inputs":[{"name":"productId","type":"uint256"}],"outputs":[{"name":"name","type":"string"},{"name":"description","type":"string"},{"name":"price","type":"uint256"},{"name":"owner","type":"address"},{"name":"status","type":"uint8"}]},
  {"type":"function","name":"getShipmentUpdate","stateMutability":"view","inputs":[{"name":"productId","type":"uint256"},{"name":"updateId","type":"uint256"}],"outputs":[{"name":"location","type":"string"},{"name":"notes","type":"string"},{"name":"status","type":"uint8"},{"name":"timestamp","type":"uint256"}]},
  {"type":"event","name":"ProductCreated","anonymous":false,"inputs":[{"name":"productId","type":"uint256","indexed":false},{"name":"owner","type":"address","indexed":false}]},
  {"type":"event","name":"ShipmentUpdateAdded","anonymous":false,"inputs":[{"name":"productId","type":"uint256","indexed":false},{"name":"updateId","type":"uint256","indexed":false}]}
]`

const documentVerificationABI = `[
  {"type":"function","name":"addDocument","stateMutability":"nonpayable","inputs":[{"name":"productId","type":"uint256"},{"name":"documentHash","type":"string"},{"name":"documentType","type":"string"}],"outputs":[{"name":"documentId","type":"uint256"}]},
  {"type":"function","name":"verifyDocument","stateMutability":"nonpayable","inputs":[{"name":"documentId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getDocumentDetails","stateMutability":"view","inputs":[{"name":"documentId","type":"uint256"}],"outputs":[{"name":"productId","type":"uint256"},{"name":"documentHash","type":"string"},{"name":"documentType","type":"string"},{"name":"verified","type":"bool"},{"name":"verifier","type":"address"}]},
  {"type":"function","name":"getProductDocuments","stateMutability":"view","inputs":[{"name":"productId","type":"uint256"}],"outputs":[{"name":"documentIds","type":"uint256[]"}]},
  {"type":"event","name":"DocumentAdded","anonymous":false,"inputs":[{"name":"documentId","type":"uint256","indexed":false},{"name":"productId","type":"uint256","indexed":false}]},
  {"type":"event","name":"DocumentVerified","anonymous":false,"inputs":[{"name":"documentId","type":"uint256","indexed":false},{"name":"verifier","type":"address","indexed":false}]}
]`

const supplyChainPaymentABI = `[
  {"type":"function","name":"createPayment","stateMutability":"payable","inputs":[{"name":"productId","type":"uint256"},{"name":"payee","type":"address"}],"outputs":[{"name":"paymentId","type":"uint256"}]},
  {"type":"function","name":"completePayment","stateMutability":"nonpayable","inputs":[{"name":"paymentId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"refundPayment","stateMutability":"nonpayable","inputs":[{"name":"paymentId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"disputePayment","stateMutability":"nonpayable","inputs":[{"name":"paymentId","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
  {"type":"function","name":"createEscrow","stateMutability":"payable","inputs":[{"name":"productId","type":"uint256"},{"name":"seller","type":"address"},{"name":"releaseTime","type":"uint256"}],"outputs":[{"name":"escrowId","type":"uint256"}]},
  {"type":"function","name":"releaseEscrow","stateMutability":"nonpayable","inputs":[{"name":"escrowId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"refundEscrow","stateMutability":"nonpayable","inputs":[{"name":"escrowId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getPaymentDetails","stateMutability":"view","inputs":[{"name":"paymentId","type":"uint256"}],"outputs":[{"name":"productId","type":"uint256"},{"name":"payer","type":"address"},{"name":"payee","type":"address"},{"name":"amount","type":"uint256"},{"name":"status","type":"uint8"}]},
  {"type":"function","name":"getEscrowDetails","stateMutability":"view","inputs":[{"name":"escrowId","type":"uint256"}],"outputs":[{"name":"productId","type":"uint256"},{"name":"buyer","type":"address"},{"name":"seller","type":"address"},{"name":"amount","type":"uint256"},{"name":"releaseTime","type":"uint256"},{"name":"status","type":"uint8"}]},
  {"type":"event","name":"PaymentCreated","anonymous":false,"inputs":[{"name":"paymentId","type":"uint256","indexed":false},{"name":"productId","type":"uint256","indexed":false}]},
  {"type":"event","name":"EscrowCreated","anonymous":false,"inputs":[{"name":"escrowId","type":"uint256","indexed":false},{"name":"productId","type":"uint256","indexed":false}]}
]`

var contractABIs = map[Contract]abi.ABI{}

func init() {
	for contract, raw := range map[Contract]string{
		ContractSupplyChain: supplyChainABI,
		ContractDocuments:   documentVerificationABI,
		ContractPayments:    supplyChainPaymentABI,
	} {
		parsed, err := abi.JSON(strings.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("chain: parse %s ABI: %v", contract, err))
		}
		contractABIs[contract] = parsed
	}
}
