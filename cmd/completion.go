package cmd

import (
	"fmt"
)

// Completion outputs shell completion scripts
func Completion(shell string) error {
	switch shell {
	case "bash":
		fmt.Fprint(stdout, bashCompletion)
	case "zsh":
		fmt.Fprint(stdout, zshCompletion)
	case "fish":
		fmt.Fprint(stdout, fishCompletion)
	default:
		return &UsageError{
			Msg:   fmt.Sprintf("unknown shell: %s", shell),
			Usage: "superpwdhash completion <bash|zsh|fish>",
		}
	}
	return nil
}

const bashCompletion = `_superpwdhash() {
    local cur prev words cword
    _init_completion || return

    local commands="init add rm ls get derive selftest import export compact help completion"

    # global flags come before the command and shift its position
    local -a globals=()
    local cmd="" i
    for ((i = 1; i < cword; i++)); do
        case "${words[i]}" in
            -db|--db|-config|--config)
                globals+=("${words[i]}" "${words[i+1]}")
                ((i++))
                ;;
            -*)
                globals+=("${words[i]}")
                ;;
            *)
                cmd="${words[i]}"
                break
                ;;
        esac
    done

    if [[ -z "$cmd" ]]; then
        case "$prev" in
            -db|--db|-config|--config)
                _filedir
                ;;
            *)
                if [[ "$cur" == -* ]]; then
                    COMPREPLY=($(compgen -W "-db -config -v" -- "$cur"))
                else
                    COMPREPLY=($(compgen -W "$commands" -- "$cur"))
                fi
                ;;
        esac
        return
    fi

    local sites
    sites="$(superpwdhash "${globals[@]}" ls -q 2>/dev/null)"

    case "$cmd" in
        get|derive)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--add --profile" -- "$cur"))
            elif [[ "$prev" == "--profile" ]]; then
                COMPREPLY=($(compgen -W "default long" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "$sites" -- "$cur"))
            fi
            ;;
        rm)
            COMPREPLY=($(compgen -W "$sites" -- "$cur"))
            ;;
        import)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--dry-run" -- "$cur"))
            else
                _filedir json
            fi
            ;;
        export)
            COMPREPLY=($(compgen -W "-o" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _superpwdhash superpwdhash
`

const zshCompletion = `#compdef superpwdhash

_superpwdhash() {
    local -a commands
    commands=(
        'init:Store a master password verifier'
        'add:Register sites'
        'rm:Remove sites from the registry'
        'ls:List registered sites'
        'get:Derive site passwords'
        'derive:Derive site passwords'
        'selftest:Check this build against reference vectors'
        'import:Import a JSON host list'
        'export:Export the registry as JSON'
        'compact:Compact the registry database'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '-db[Site registry database]:file:_files' \
        '-config[YAML config file]:file:_files' \
        '-v[Log debug output]' \
        '1: :->command' \
        '*:: :->args'

    case "$state" in
        command)
            _describe -t commands 'superpwdhash commands' commands
            ;;
        args)
            case "${words[1]}" in
                get|derive)
                    _arguments \
                        '--add[Also register the sites]' \
                        '--profile[Derivation profile]:profile:(default long)' \
                        '*:site:_superpwdhash_sites'
                    ;;
                rm)
                    _arguments '*:site:_superpwdhash_sites'
                    ;;
                import)
                    _arguments \
                        '--dry-run[Show changes without saving]' \
                        '1:file:_files -g "*.json"'
                    ;;
                help)
                    _describe -t commands 'superpwdhash commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_superpwdhash_sites() {
    local -a sites
    sites=(${(f)"$(superpwdhash ls -q 2>/dev/null)"})
    _describe -t sites 'registered sites' sites
}

_superpwdhash "$@"
`

const fishCompletion = `# superpwdhash fish completions

set -l commands init add rm ls get derive selftest import export compact help completion

complete -c superpwdhash -f

# Commands
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a init -d 'Store a master password verifier'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a add -d 'Register sites'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove sites'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List sites'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a get -d 'Derive site passwords'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a derive -d 'Derive site passwords'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a selftest -d 'Check reference vectors'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a import -d 'Import a JSON host list'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a export -d 'Export the registry'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact the registry'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c superpwdhash -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# get flags and sites
complete -c superpwdhash -n "__fish_seen_subcommand_from get derive" -l add -d 'Also register the sites'
complete -c superpwdhash -n "__fish_seen_subcommand_from get derive" -l profile -x -a "default long" -d 'Derivation profile'
complete -c superpwdhash -n "__fish_seen_subcommand_from get derive rm" -a "(superpwdhash ls -q 2>/dev/null)"

# import flags and files
complete -c superpwdhash -n "__fish_seen_subcommand_from import" -l dry-run -d 'Show changes without saving'
complete -c superpwdhash -n "__fish_seen_subcommand_from import" -F

# help completions
complete -c superpwdhash -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c superpwdhash -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
